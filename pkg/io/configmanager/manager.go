// Package configmanager loads devlab configuration from files, environment
// variables, and flags into the v1alpha1.Config schema.
//
// Priority: defaults < devlab.yaml < DEVLAB_* environment < flags.
package configmanager

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/devlab-sh/devlab/pkg/apis/devlab/v1alpha1"
	"github.com/devlab-sh/devlab/pkg/ui/notify"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const envPrefix = "DEVLAB"

// ConfigManager loads and caches a v1alpha1.Config.
type ConfigManager struct {
	Viper  *viper.Viper
	Config *v1alpha1.Config
	Writer io.Writer

	configLoaded bool
}

// NewConfigManager creates a configuration manager writing notifications to
// the given writer.
func NewConfigManager(writer io.Writer) *ConfigManager {
	viperInstance := viper.NewWithOptions(viper.KeyDelimiter("."))
	viperInstance.SetConfigName("devlab")
	viperInstance.SetConfigType("yaml")
	viperInstance.AddConfigPath(".")
	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	return &ConfigManager{
		Viper:  viperInstance,
		Config: v1alpha1.NewConfig(),
		Writer: writer,
	}
}

// NewCommandConfigManager constructs a ConfigManager bound to the provided
// Cobra command, registering the standard override flags.
func NewCommandConfigManager(cmd *cobra.Command) *ConfigManager {
	manager := NewConfigManager(cmd.OutOrStdout())
	manager.AddFlags(cmd)

	return manager
}

// AddFlags registers override flags on the command and binds them to viper
// keys.
func (m *ConfigManager) AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.String("config", "", "Path to a devlab config file (default ./devlab.yaml)")
	flags.String("name", v1alpha1.DefaultClusterName, "Name of the cluster to provision")
	flags.String("kubeconfig", "~/.kube/config", "Path to the kubeconfig to write and use")
	flags.String("context", "", "Kubeconfig context to use (defaults to the created cluster's)")
	flags.String("scratch-root", v1alpha1.DefaultScratchRoot, "Host directory for scratch mounts")

	_ = m.Viper.BindPFlag("config", flags.Lookup("config"))
	_ = m.Viper.BindPFlag("spec.cluster.name", flags.Lookup("name"))
	_ = m.Viper.BindPFlag("spec.connection.kubeconfig", flags.Lookup("kubeconfig"))
	_ = m.Viper.BindPFlag("spec.connection.context", flags.Lookup("context"))
	_ = m.Viper.BindPFlag("spec.cluster.scratchRoot", flags.Lookup("scratch-root"))
}

// LoadConfig loads the configuration, applying defaults and validation.
// Subsequent calls return the cached config.
func (m *ConfigManager) LoadConfig() (*v1alpha1.Config, error) {
	if m.configLoaded {
		return m.Config, nil
	}

	if configFile := m.Viper.GetString("config"); configFile != "" {
		m.Viper.SetConfigFile(configFile)
	}

	err := m.Viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No devlab.yaml is fine; defaults and overrides apply.
	} else {
		notify.Infof(m.Writer, "loaded configuration from %s", m.Viper.ConfigFileUsed())
	}

	config := v1alpha1.NewConfig()

	decodeErr := m.Viper.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			metav1DurationHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if decodeErr != nil {
		return nil, fmt.Errorf("decode config: %w", decodeErr)
	}

	v1alpha1.SetDefaults(config)

	validateErr := v1alpha1.Validate(config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	m.Config = config
	m.configLoaded = true

	return m.Config, nil
}

// metav1DurationHookFunc decodes duration strings ("5m") into
// metav1.Duration values, which mapstructure cannot do on its own.
func metav1DurationHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(metav1.Duration{}) {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", raw, err)
		}

		return metav1.Duration{Duration: parsed}, nil
	}
}
