package database

import (
	"fmt"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"
)

// EnvPrefix prefixes the environment variables that override file settings.
const EnvPrefix = "WAREHOUSER_"

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadFile reads a YAML settings file, applies WAREHOUSER_* environment
// overrides and builds a Config through FromMap. An empty path loads from
// the environment alone.
//
// The file uses the same keys as FromMap. Values are type checked the same
// way, so an unquoted port such as 5432 is rejected:
//
//	dbms: postgresql
//	host: db.internal
//	port: "5432"
//	user: loader
//	password: "${PG_PASSWORD}"
//	database: warehouse
//
// Only the braced ${NAME} form is replaced with the environment value; a
// bare "$" is kept as written, so passwords may contain it.
func LoadFile(path string) (*Config, error) {
	m := make(map[string]any)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(expandEnv(data), &m); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(m)

	cfg, err := FromMap(m)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", describe(path), err)
	}
	return cfg, nil
}

func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
}

func applyEnv(m map[string]any) {
	for env, key := range map[string]string{
		EnvPrefix + "DBMS":     KeyDBMS,
		EnvPrefix + "HOST":     KeyHost,
		EnvPrefix + "PORT":     KeyPort,
		EnvPrefix + "USER":     KeyUser,
		EnvPrefix + "PASSWORD": KeyPassword,
		EnvPrefix + "DATABASE": KeyDatabase,
	} {
		if v, ok := os.LookupEnv(env); ok {
			m[key] = v
		}
	}
}

func describe(path string) string {
	if path == "" {
		return "from environment"
	}
	return path
}
