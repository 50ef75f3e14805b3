package main

import (
	"bytes"
	"flag"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// resetFlags resets the global flag.CommandLine to avoid "flag redefined" panic
func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
}

func TestParseFlags_Default(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd"}
	assert.Equal(t, "config.env", parseFlags())
}

func TestParseFlags_Custom(t *testing.T) {
	resetFlags()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "-c", "myconfig.env"}
	assert.Equal(t, "myconfig.env", parseFlags())
}

func TestPrintBuildInfo_Output(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	buildVersion = "v1.0.0"
	buildCommit = "abcd1234"
	buildDate = "2026-01-15"

	printBuildInfo()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	output := buf.String()
	assert.Contains(t, output, "v1.0.0")
	assert.Contains(t, output, "abcd1234")
	assert.Contains(t, output, "2026-01-15")
}

func TestParseConfig_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "access-secret")
	os.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	defer os.Clearenv()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		kafkaBrokers, kafkaTopic,
		jwtAccessSecret, jwtRefreshSecret,
		err := parseConfig("nonexistent.env")

	assert.NoError(t, err)
	assert.Equal(t, "localhost", appHost)
	assert.Equal(t, "3001", appPort)
	assert.Equal(t, "info", logLevel)
	assert.Equal(t, "localhost", pgHost)
	assert.Equal(t, 5432, pgPort)
	assert.Equal(t, "user", pgUser)
	assert.Equal(t, "password", pgPassword)
	assert.Equal(t, "users", pgDB)
	assert.Equal(t, 16, pgMaxOpenConns)
	assert.Equal(t, 8, pgMaxIdleConns)
	assert.Empty(t, kafkaBrokers)
	assert.Equal(t, "user-events", kafkaTopic)
	assert.Equal(t, "access-secret", jwtAccessSecret)
	assert.Equal(t, "refresh-secret", jwtRefreshSecret)
}

func TestParseConfig_MissingSecretsFails(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	_, _, _, _, _, _, _, _, _, _, _, _, _, _, err := parseConfig("nonexistent.env")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "JWT_SECRET"))
}

func TestParseConfig_KafkaBrokerList(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "a")
	os.Setenv("JWT_REFRESH_SECRET", "r")
	os.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	defer os.Clearenv()

	_, _, _, _, _, _, _, _, _, _, kafkaBrokers, _, _, _, err := parseConfig("nonexistent.env")
	assert.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, kafkaBrokers)
}

func TestParseConfig_InvalidPort(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "a")
	os.Setenv("JWT_REFRESH_SECRET", "r")
	os.Setenv("POSTGRES_PORT", "not-a-number")
	defer os.Clearenv()

	_, _, _, _, _, _, _, _, _, _, _, _, _, _, err := parseConfig("nonexistent.env")
	assert.Error(t, err)
}
