// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "projtrack")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "projtrack.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", "Sunday")

	viper.SetDefault("storage.mode", ModeDirect)
	viper.SetDefault("storage.engine", EngineSQLite)

	viper.SetDefault("storage.sqlite.path", "data/projects.db")

	viper.SetDefault("storage.mysql.username", "projtrack")
	viper.SetDefault("storage.mysql.password", "")
	viper.SetDefault("storage.mysql.database", "projtrack")
	viper.SetDefault("storage.mysql.host", "localhost")
	viper.SetDefault("storage.mysql.port", 3306)

	viper.SetDefault("storage.remote.url", "http://localhost:8080")
	viper.SetDefault("storage.remote.timeout", 30)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.dashboard.recentlimit", 5)
	viper.SetDefault("webserver.dashboard.summaryttl", 30)

	viper.SetDefault("webserver.log.enabled", false)
	viper.SetDefault("webserver.log.path", "webui.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 1048576)
	viper.SetDefault("webserver.log.rotationday", "Sunday")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
}
