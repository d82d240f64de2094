// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// Config keys shared by flags, the config file, and PAPER_FEED_* env vars.
const (
	keyStore      = "store"
	keyBaseURL    = "base_url"
	keyCategories = "categories"
	keyMaxResults = "max_results"
	keyRetain     = "retain"
	keyTimeout    = "timeout"
	keyUserAgent  = "user_agent"
	keyIndex      = "index"
	keySchedule   = "schedule"
)

// bindFeedFlags registers the feed settings as persistent flags on cmd and
// binds each one to its viper key.
func bindFeedFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("store", types.DefaultStorePath, "JSON store file")
	flags.String("base-url", types.DefaultBaseURL, "arXiv query endpoint")
	flags.StringSlice("category", types.DefaultCategories, "search_query category term (repeatable)")
	flags.Int("max-results", types.DefaultMaxResults, "max_results requested from arXiv")
	flags.Int("retain", types.DefaultRetainLimit, "maximum papers kept in the store")
	flags.Duration("timeout", types.DefaultTimeout, "HTTP request timeout")
	flags.String("user-agent", types.DefaultUserAgent, "User-Agent header")
	flags.String("index", "", "SQLite index refreshed after each save (empty disables)")

	for key, flag := range map[string]string{
		keyStore:      "store",
		keyBaseURL:    "base-url",
		keyCategories: "category",
		keyMaxResults: "max-results",
		keyRetain:     "retain",
		keyTimeout:    "timeout",
		keyUserAgent:  "user-agent",
		keyIndex:      "index",
	} {
		viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// feedConfig resolves the feed configuration from v, starting from the
// defaults so that an empty config reproduces a plain run.
func feedConfig(v *viper.Viper) (types.FeedConfig, error) {
	cfg := types.DefaultFeedConfig()

	if v.IsSet(keyStore) {
		cfg.StorePath = v.GetString(keyStore)
	}
	if v.IsSet(keyBaseURL) {
		cfg.BaseURL = v.GetString(keyBaseURL)
	}
	if v.IsSet(keyCategories) {
		cfg.Categories = v.GetStringSlice(keyCategories)
	}
	if v.IsSet(keyMaxResults) {
		cfg.MaxResults = v.GetInt(keyMaxResults)
	}
	if v.IsSet(keyRetain) {
		cfg.RetainLimit = v.GetInt(keyRetain)
	}
	if v.IsSet(keyTimeout) {
		cfg.Timeout = v.GetDuration(keyTimeout)
	}
	if v.IsSet(keyUserAgent) {
		cfg.UserAgent = v.GetString(keyUserAgent)
	}
	if v.IsSet(keyIndex) {
		cfg.IndexPath = v.GetString(keyIndex)
	}

	if err := cfg.Validate(); err != nil {
		return types.FeedConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
