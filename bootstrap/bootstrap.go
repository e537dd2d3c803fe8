package bootstrap

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fulldump/box"

	"github.com/fulldump/lazylist/api"
	"github.com/fulldump/lazylist/configuration"
	"github.com/fulldump/lazylist/database"
	"github.com/fulldump/lazylist/service"
)

var VERSION = "dev"

// Bootstrap wires database, service and http server. start blocks until stop
// is called or a SIGTERM/SIGINT arrives.
func Bootstrap(c configuration.Configuration) (start, stop func()) {

	db := database.NewDatabase(&database.Config{
		Dir: c.Dir,
	})

	s := service.NewService(db)
	if c.PageSize > 0 {
		s.PageSize = c.PageSize
	}
	if c.LockTimeoutMs >= 0 {
		s.LockTimeout = time.Duration(c.LockTimeoutMs) * time.Millisecond
	}

	b := api.Build(s, c.Statics, VERSION, c.ApiKey, c.ApiSecret)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog(log.New(os.Stdout, "ACCESS: ", log.Lshortfile)),
		api.PrettyErrorInterceptor, // renders errors set by everything below
		api.RecoverFromPanic,
		api.InterceptorUnavailable(db),
	)

	server := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	if c.HttpsSelfsigned {
		log.Println("HTTPS Selfsigned")
		certificate, err := selfSignedCertificate()
		if err != nil {
			log.Println("ERROR:", err.Error())
			os.Exit(-1)
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{certificate},
		}
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		log.Println("ERROR:", err.Error())
		os.Exit(-1)
	}
	log.Println("listening on", ln.Addr().String())

	stopOnce := &sync.Once{}
	stop = func() {
		stopOnce.Do(func() {
			db.Stop()
			server.Shutdown(context.Background())
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		log.Println("Signal received", sig.String())
		stop()
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Start()
			if err != nil {
				log.Println(err.Error())
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if c.HttpsEnabled {
				err = server.ServeTLS(ln, "", "")
			} else {
				err = server.Serve(ln)
			}
			if err != nil && err != http.ErrServerClosed {
				log.Println(err.Error())
			}
		}()

		wg.Wait()
	}

	return
}
