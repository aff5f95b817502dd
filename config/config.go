package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the proxy configuration: one or more named data sources
// and the execution fan-out engine's pool size.
type Config struct {
	DataSources  map[string]DataSourceConfig
	ExecutorSize int
}

// DataSourceConfig describes one shard: a primary and its read replicas.
type DataSourceConfig struct {
	Listen   string
	Primary  string
	Replicas []string
	// Driver selects the database/sql driver name a sqlbackend.Backend
	// opens this data source's addresses with: "mysql", "postgres", or
	// "sqlite3". Defaults to "mysql" when unset.
	Driver string
}

// defaultExecutorSize is 4*NumCPU, matching a bounded cached-thread-pool
// sizing convention. executorSize == 0 (unbounded direct-handoff) is a
// legal mode but only reachable by explicit configuration — the zero
// value on an unconfigured Config is never 0.
func defaultExecutorSize() int { return 4 * runtime.NumCPU() }

// Load reads configuration from an INI file with environment variable
// overrides. Each top-level section other than "executor" names a data
// source; keys within it are "listen", "primary", "driver", and
// "replica1".."replica10".
func Load(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DataSources:  make(map[string]DataSourceConfig),
		ExecutorSize: defaultExecutorSize(),
	}

	for _, sec := range cfg.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection {
			continue
		}
		if name == "executor" {
			config.ExecutorSize = sec.Key("size").MustInt(defaultExecutorSize())
			continue
		}
		config.DataSources[name] = loadDataSourceConfig(sec)
	}

	if len(config.DataSources) == 0 {
		return nil, fmt.Errorf("config: no data sources configured in %s", path)
	}

	applyEnvOverrides(config)
	return config, nil
}

func loadDataSourceConfig(sec *ini.Section) DataSourceConfig {
	listen := sec.Key("listen").String()
	primary := sec.Key("primary").String()

	var replicas []string
	for i := 1; i <= 10; i++ { // up to 10 replicas per data source
		key := "replica" + strconv.Itoa(i)
		if replica := sec.Key(key).String(); replica != "" {
			replicas = append(replicas, replica)
		}
	}

	driver := sec.Key("driver").MustString("mysql")

	return DataSourceConfig{Listen: listen, Primary: primary, Replicas: replicas, Driver: driver}
}

// applyEnvOverrides reads SPHERE_<DATASOURCE>_LISTEN / _PRIMARY and
// SPHERE_EXECUTOR_SIZE, mirroring the teacher's TQDBPROXY_* convention.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SPHERE_EXECUTOR_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.ExecutorSize = n
		}
	}
	for name, ds := range config.DataSources {
		prefix := "SPHERE_" + strings.ToUpper(name) + "_"
		if v := os.Getenv(prefix + "LISTEN"); v != "" {
			ds.Listen = v
		}
		if v := os.Getenv(prefix + "PRIMARY"); v != "" {
			ds.Primary = v
		}
		config.DataSources[name] = ds
	}
}
