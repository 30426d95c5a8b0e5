package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/autopeer-io/gcslink/pkg/log"
)

const configFlagName = "config"

// EnvPrefix prefixes the environment variables overriding options, e.g.
// GCSLINK_MQTT_BROKER for --mqtt.broker.
const EnvPrefix = "GCSLINK"

func addConfigFlag(basename string, fs *pflag.FlagSet) *string {
	return fs.StringP(configFlagName, "c", "",
		fmt.Sprintf("Read configuration from the specified file, e.g. /etc/gcslink/%s.yaml. Flags and %s_* environment variables take precedence.", basename, EnvPrefix))
}

// loadConfig merges the config file and the environment into v. Flags are
// bound by the caller and win over both.
func loadConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", cfgFile, err)
	}
	log.Info("Using config file", "file", filepath.Clean(v.ConfigFileUsed()))
	return nil
}

// watchLogLevel applies log.level changes from the config file without a
// restart.
func watchLogLevel(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		if err := log.SetLevel(level); err != nil {
			log.Error(err, "Ignoring invalid log level from config file", "file", e.Name)
			return
		}
		log.Info("Log level changed", "level", level)
	})
	v.WatchConfig()
}
