package config

import (
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-loads the configuration whenever the config file changes on
// disk and invokes onChange with the new value. Reloads that fail to
// unmarshal or validate are logged and dropped, keeping the previous
// configuration in effect. Watching stays active for the life of the
// process.
func Watch(onChange func(*Config)) {
	var mu sync.Mutex

	viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		cfg, err := Load()
		if err != nil {
			log.Printf("config: reload failed for %s: %v", e.Name, err)
			return
		}
		if err := cfg.Validate(); err != nil {
			log.Printf("config: reload rejected for %s: %v", e.Name, err)
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}
