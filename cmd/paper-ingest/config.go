// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Configuration keys. Nested keys map to PAPER_INGEST_RESOLVE_* variables.
const (
	keyDataDir         = "data_dir"
	keyTimeout         = "timeout"
	keyUserAgent       = "user_agent"
	keyMaxRedirects    = "max_redirects"
	keyConcurrency     = "concurrency"
	keyLogMode         = "log_mode"
	keyDOILookup       = "resolve.doi_lookup"
	keySemanticScholar = "resolve.semantic_scholar"
	keyMaxRetries      = "resolve.max_retries"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers DefaultImportConfig values under their keys.
func setDefaults(v *viper.Viper) {
	d := types.DefaultImportConfig()
	v.SetDefault(keyDataDir, d.Store.DataDir)
	v.SetDefault(keyTimeout, d.Download.Timeout)
	v.SetDefault(keyUserAgent, d.Download.UserAgent)
	v.SetDefault(keyMaxRedirects, d.Download.MaxRedirects)
	v.SetDefault(keyConcurrency, d.Concurrency)
	v.SetDefault(keyLogMode, d.LogMode)
	v.SetDefault(keyDOILookup, d.Resolve.DOILookup)
	v.SetDefault(keySemanticScholar, d.Resolve.SemanticScholar)
	v.SetDefault(keyMaxRetries, d.Resolve.MaxRetries)
}

// bindFlag binds a flag to a key on the global viper instance.
func bindFlag(key string, f *pflag.Flag) {
	if f == nil {
		return
	}
	if err := viper.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

// loadConfig builds the pipeline configuration from v.
func loadConfig(v *viper.Viper) types.ImportConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   v.GetDuration(keyTimeout),
		UserAgent: v.GetString(keyUserAgent),
	}
	return types.ImportConfig{
		Download: types.DownloadConfig{
			HTTPConfig:   httpCfg,
			MaxRedirects: v.GetInt(keyMaxRedirects),
		},
		Resolve: types.ResolverConfig{
			HTTPConfig:      httpCfg,
			DOILookup:       v.GetBool(keyDOILookup),
			SemanticScholar: v.GetBool(keySemanticScholar),
			MaxRetries:      v.GetInt(keyMaxRetries),
		},
		Store:       types.StoreConfig{DataDir: v.GetString(keyDataDir)},
		Concurrency: v.GetInt(keyConcurrency),
		LogMode:     v.GetString(keyLogMode),
	}
}
