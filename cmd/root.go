package cmd

import (
	"FamilyTime/config"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "familytime",
	Short: "Family screen-time ledger service.",
	Long: `familytime keeps children's daily screen-time budgets, extra-time requests,
chore rewards and bonus minutes consistent under concurrent parents and devices.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.familytime.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "", "Set log level. Available: debug, info, warn, error, fatal (overrides LOG_LEVEL)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.LoadDotEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".familytime")
		viper.SetConfigType("yaml")
	}

	// Файл конфигурации необязателен, переменных окружения достаточно
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			config.Log.Warnf("Error reading config file: %v", err)
		}
	}

	config.SetDefaults(viper.GetViper())
	viper.AutomaticEnv()

	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if levelString == "" {
		levelString = viper.GetString("log_level")
	}
	config.SetLogLevel(levelString)
}

// loadConfig читает и проверяет конфигурацию для команд, которым нужен бэкенд
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
