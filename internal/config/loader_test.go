package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchkit/dispatchkit/internal/util"
)

const validConfig = `
mappings:
  - name: api
    priority: 1
    routes:
      - pattern: /api/users/{id}
        handler: getUser
        methods: [GET]
      - pattern: /api
        handler: apiFallback
        match: prefix
  - name: static
    routes:
      - pattern: /static/**
        handler: serveStatic
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(validConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Mappings, 2)
	assert.Equal(t, "api", cfg.Mappings[0].Name)
	require.NotNil(t, cfg.Mappings[0].Priority)
	assert.Equal(t, 1, *cfg.Mappings[0].Priority)
	assert.Nil(t, cfg.Mappings[1].Priority)

	require.Len(t, cfg.Mappings[0].Routes, 2)
	assert.Equal(t, "/api/users/{id}", cfg.Mappings[0].Routes[0].Pattern)
	assert.Equal(t, []string{"GET"}, cfg.Mappings[0].Routes[0].Methods)
	assert.Equal(t, "prefix", cfg.Mappings[0].Routes[1].Match)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Mappings, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader("mappings: [unclosed"))
	assert.Error(t, err)
}

func TestEnvVarSubstitution(t *testing.T) {
	t.Setenv("DISPATCH_HANDLER", "envHandler")

	content := `
mappings:
  - name: api
    routes:
      - pattern: /users
        handler: ${DISPATCH_HANDLER}
      - pattern: /orders
        handler: ${MISSING_HANDLER:-defaultHandler}
`

	cfg, err := LoadFromReader(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "envHandler", cfg.Mappings[0].Routes[0].Handler)
	assert.Equal(t, "defaultHandler", cfg.Mappings[0].Routes[1].Handler)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	route := RouteConfig{Pattern: "/users", Handler: "h"}

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "no mappings",
			cfg:     Config{},
			wantErr: "at least one mapping is required",
		},
		{
			name: "missing mapping name",
			cfg: Config{Mappings: []MappingConfig{
				{Routes: []RouteConfig{route}},
			}},
			wantErr: "mapping name is required",
		},
		{
			name: "duplicate mapping name",
			cfg: Config{Mappings: []MappingConfig{
				{Name: "api", Routes: []RouteConfig{route}},
				{Name: "api", Routes: []RouteConfig{route}},
			}},
			wantErr: "duplicate mapping name",
		},
		{
			name: "no routes",
			cfg: Config{Mappings: []MappingConfig{
				{Name: "api"},
			}},
			wantErr: "at least one route is required",
		},
		{
			name: "missing pattern",
			cfg: Config{Mappings: []MappingConfig{
				{Name: "api", Routes: []RouteConfig{{Handler: "h"}}},
			}},
			wantErr: "pattern is required",
		},
		{
			name: "missing handler",
			cfg: Config{Mappings: []MappingConfig{
				{Name: "api", Routes: []RouteConfig{{Pattern: "/users"}}},
			}},
			wantErr: "handler is required",
		},
		{
			name: "unknown match kind",
			cfg: Config{Mappings: []MappingConfig{
				{Name: "api", Routes: []RouteConfig{{Pattern: "/users", Handler: "h", Match: "glob"}}},
			}},
			wantErr: "unknown match kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, util.ErrConfigInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	cfg := Config{Mappings: []MappingConfig{
		{Name: "api", Routes: []RouteConfig{
			{Pattern: "/users", Handler: "h"},
			{Pattern: "/api", Handler: "h", Match: "prefix"},
			{Pattern: `^/v\d+$`, Handler: "h", Match: "regex"},
		}},
	}}

	assert.NoError(t, cfg.Validate())
}
