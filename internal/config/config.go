package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
	"time"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env:"TELEGRAM_ADMIN_ID" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"TimerBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	Discord struct {
		Token   string `yaml:"token" env:"DISCORD_TOKEN" env-default:""`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"discord"`
	Harvest struct {
		BaseURL string        `yaml:"base_url" env:"HARVEST_BASE_URL" env-default:""`
		Token   string        `yaml:"token" env:"HARVEST_TOKEN" env-default:""`
		Timeout time.Duration `yaml:"timeout" env-default:"10s"`
		// chat user key ("telegram:42") -> backend user id
		Users map[string]int64 `yaml:"users" env:"HARVEST_USERS"`
	} `yaml:"harvest"`
	Session struct {
		Storage string        `yaml:"storage" env-default:"memory"`
		TTL     time.Duration `yaml:"ttl" env-default:"0s"`
	} `yaml:"session"`
	Mongo struct {
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
		Database string `yaml:"database" env-default:"timerbot"`
	} `yaml:"mongo"`
	Sqlite struct {
		Path string `yaml:"path" env-default:"timerbot.db"`
	} `yaml:"sqlite"`
	Listen struct {
		Enabled bool   `yaml:"enabled" env-default:"true"`
		BindIP  string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string `yaml:"port" env-default:"9100"`
		ApiKey  string `yaml:"key" env:"LISTEN_API_KEY" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
