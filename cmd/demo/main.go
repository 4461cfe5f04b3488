package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/dgrijalva/jwt-go"
	"github.com/dgrijalva/jwt-go/request"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/rest-layer-orm/mem"
	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/rest"
	"github.com/rs/rest-layer-orm/schema"
	"github.com/rs/rest-layer-orm/sqlstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

//go:embed models.yaml
var defaultModels []byte

var (
	listen    = flag.String("listen", ":8080", "Listen address")
	models    = flag.String("models", "", "YAML model definitions (defaults to the User/Task/Tag demo)")
	store     = flag.String("store", "sqlite", "Storage: mem, sqlite, pgx, postgres or mysql")
	dsn       = flag.String("dsn", "file::memory:?cache=shared", "Storage data source name")
	breaker   = flag.Bool("hystrix", false, "Wrap the storage with hystrix circuit breakers")
	jwtSecret = flag.String("jwt-secret", "", "When set, writes require a HS256 JWT signed with this secret")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	index, err := loadIndex(*models)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid models")
	}

	storage, err := openStorage(context.Background(), index)
	if err != nil {
		log.Fatal().Err(err).Str("store", *store).Msg("Cannot open storage")
	}
	if *breaker {
		storage = resource.NewHystrixStorer(*store, storage)
		hystrix.Configure(map[string]hystrix.CommandConfig{
			*store + ".Find":  {Timeout: 1000, MaxConcurrentRequests: 100, ErrorPercentThreshold: 25},
			*store + ".Count": {Timeout: 1000, MaxConcurrentRequests: 100, ErrorPercentThreshold: 25},
			*store + ".Begin": {Timeout: 1000, MaxConcurrentRequests: 50, ErrorPercentThreshold: 25},
		})
	}

	reg := prometheus.NewRegistry()
	service, err := resource.NewService(index, storage,
		resource.WithConf(resource.DefaultConf),
		resource.WithMetrics(reg))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid service configuration")
	}
	err = service.Use("", resource.InsertedEventHandlerFunc(func(ctx context.Context, r *resource.Record, err *error) {
		if *err == nil {
			zerolog.Ctx(ctx).Debug().Str("type", r.Model.Name).Interface("id", r.ID()).Msg("Record inserted")
		}
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid event handler")
	}

	api, err := rest.NewHandler(service)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid API configuration")
	}
	api.RequestTimeout = 10 * time.Second

	// Setup logger
	c := alice.New()
	c = c.Append(hlog.NewHandler(log.With().Logger()))
	c = c.Append(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	c = c.Append(hlog.RemoteAddrHandler("ip"))
	c = c.Append(hlog.UserAgentHandler("ua"))
	c = c.Append(hlog.RefererHandler("ref"))
	c = c.Append(hlog.RequestIDHandler("req_id", "Request-Id"))
	c = c.Append(cors.New(cors.Options{OptionsPassthrough: true}).Handler)
	if *jwtSecret != "" {
		c = c.Append(jwtGuard([]byte(*jwtSecret)))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", c.Then(api)))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Info().Str("listen", *listen).Str("store", *store).Msg("Serving API on /api/")
	if err := http.ListenAndServe(*listen, mux); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

func loadIndex(path string) (*schema.Index, error) {
	var r io.Reader = bytes.NewReader(defaultModels)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	ms, err := schema.LoadYAML(r)
	if err != nil {
		return nil, err
	}
	index, err := schema.NewIndex(ms...)
	if err != nil {
		return nil, err
	}
	return index, index.Compile()
}

func openStorage(ctx context.Context, index *schema.Index) (resource.Storer, error) {
	if *store == "mem" {
		return mem.NewHandler(), nil
	}
	s, err := sqlstore.Open(*store, *dsn)
	if err != nil {
		return nil, err
	}
	if err := s.CreateTables(ctx, index); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// jwtGuard rejects write requests not carrying a valid HS256 token.
func jwtGuard(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			token, err := request.ParseFromRequest(r, request.OAuth2Extractor, keyFunc)
			if err != nil || !token.Valid {
				hlog.FromRequest(r).Warn().Err(err).Msg("Rejected write request")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok {
					hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
						return c.Str("sub", sub)
					})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
