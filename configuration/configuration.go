package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	HttpsEnabled      bool   `usage:"serve HTTPS instead of HTTP"`
	HttpsSelfsigned   bool   `usage:"use a self signed certificate, needs HTTPS enabled"`
	Dir               string `usage:"data directory"`
	Statics           string `usage:"statics directory, embedded browser if empty"`
	EnableCompression bool   `usage:"gzip responses"`
	ApiKey            string `usage:"api key, authentication is disabled if key and secret are empty"`
	ApiSecret         string `usage:"api secret"`
	PageSize          int    `usage:"default page size of new views"`
	LockTimeoutMs     int64  `usage:"default milliseconds a view request waits for a busy view, 0 fails fast"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:          "127.0.0.1:8080",
		Dir:               "data",
		EnableCompression: true,
		PageSize:          30,
		LockTimeoutMs:     10000,
		ShowBanner:        true,
	}
}
