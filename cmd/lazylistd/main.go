package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/lazylist/bootstrap"
	"github.com/fulldump/lazylist/configuration"
)

var banner = `
 _                     _     _     _   
| |    __ _ _____   _ | |   (_)___| |_ 
| |   / _` + "`" + ` |_  / | | || |   | / __| __|
| |__| (_| |/ /| |_| || |___| \__ \ |_ 
|_____\__,_/___|\__, ||_____|_|___/\__|
                |___/   version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _ := bootstrap.Bootstrap(c)
	start()
}
