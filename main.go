package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/convoflow/convoflow/agent"
	"github.com/convoflow/convoflow/config"
)

type cfg struct {
	config.Config
}

type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "convoflow", "namespace used in storage")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", "redis", "implementation of underline storage")
	cmd.Flags().String("notifier-impl", "redis", "implementation of the notification fan-out")
	cmd.Flags().String("erp-base-url", "http://localhost:9090", "base url of the erp system")
	cmd.Flags().String("erp-auth-token", "", "bearer token for erp calls")
	cmd.Flags().Duration("erp-read-timeout", 10*time.Second, "timeout for erp read calls")
	cmd.Flags().Duration("erp-register-timeout", 15*time.Second, "timeout for the closure registration call")
	cmd.Flags().Int("closure-queue-capacity", 128, "closure registration queue capacity")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.NotifierType = config.NotifierType(viper.GetString("notifier-impl"))
	c.cfg.ErpConfig.BaseUrl = viper.GetString("erp-base-url")
	c.cfg.ErpConfig.AuthToken = viper.GetString("erp-auth-token")
	c.cfg.ErpConfig.ReadTimeout = viper.GetDuration("erp-read-timeout")
	c.cfg.ErpConfig.RegisterTimeout = viper.GetDuration("erp-register-timeout")
	c.cfg.ClosureQueueCapacity = viper.GetInt("closure-queue-capacity")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		panic(err)
	}
	err = agent.Start()
	if err != nil {
		panic(err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "convoflow",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
