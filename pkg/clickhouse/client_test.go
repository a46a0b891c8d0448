package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host:        "ch",
		Port:        9000,
		Database:    "perpscout",
		User:        "default",
		Password:    "pw",
		DialTimeout: 5 * time.Second,
		ReadTimeout: 10 * time.Second,
	})
	assert.Equal(t, "clickhouse://default:pw@ch:9000/perpscout?dial_timeout=5s&read_timeout=10s", dsn)

	dsn = buildDSN(ClientConfig{Host: "ch", Port: 8123, Database: "db", User: "u", UseHTTP: true})
	assert.Equal(t, "http://u:@ch:8123/db", dsn)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background())
	assert.Error(t, err)
}

func TestInitSchemaRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	c := NewFromDB(db)

	mock.ExpectExec("CREATE DATABASE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, c.InitSchema(context.Background(), []string{
		"CREATE DATABASE IF NOT EXISTS perpscout",
		"CREATE TABLE IF NOT EXISTS perpscout.t (x UInt8) ENGINE = Memory",
	}))
	require.NoError(t, c.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
