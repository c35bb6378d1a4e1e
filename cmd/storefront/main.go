// Command storefront is a terminal client for the Mini App storefront
// backend. It drives the same request layer the embedded app uses:
// captured host context, audience-scoped credentials, and normalized
// list responses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"

	"github.com/tgmarket/miniapp-client/client"
	"github.com/tgmarket/miniapp-client/credential"
	"github.com/tgmarket/miniapp-client/internal/config"
	"github.com/tgmarket/miniapp-client/pkg/logging"
	"github.com/tgmarket/miniapp-client/report"
	"github.com/tgmarket/miniapp-client/session"
	"github.com/tgmarket/miniapp-client/storage"
)

const usage = `usage: storefront [flags] <command> [args]

commands:
  login                 exchange host context for a user token
  admin-login <pass>    obtain a privileged token
  logout                clear stored tokens
  whoami                show the stored token's claims
  products              list the catalog
  promos                list promotional campaigns
  assistants            list manager assistants
  settings              list admin settings values
  get <path>            issue a raw GET and print the body
`

func main() {
	var (
		configPath = flag.String("config", "storefront.yaml", "Path to YAML config")
		baseURL    = flag.String("backend", "", "Backend base URL (overrides config)")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	logger := logging.New("storefront")
	reporter := report.New(report.Options{
		Production: cfg.Production,
		Logger:     logger,
	})
	defer reporter.Recover()

	ctx := context.Background()
	if err := run(ctx, cfg, logger, flag.Args()); err != nil {
		reporter.Report(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	bridge := session.NewBridge(storage.NewMemoryStore(),
		session.WithProvider(func() string { return cfg.InitData }))
	if err := bridge.Capture(ctx, cfg.PageURL); err != nil {
		return fmt.Errorf("capture host context: %w", err)
	}

	creds := credential.NewStore(credentialStorage(cfg))

	c, err := client.New(client.Config{
		BaseURL:       cfg.BaseURL,
		Session:       bridge,
		Credentials:   creds,
		Logger:        logger,
		ContextHeader: cfg.ContextHeader,
	})
	if err != nil {
		return err
	}

	switch cmd := args[0]; cmd {
	case "login":
		if err := c.Login(ctx); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil

	case "admin-login":
		if len(args) < 2 {
			return fmt.Errorf("admin-login needs a password")
		}
		if err := c.AdminLogin(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("admin token stored")
		return nil

	case "logout":
		if err := creds.Clear(ctx, credential.AudienceStandard); err != nil {
			return err
		}
		return creds.Clear(ctx, credential.AudiencePrivileged)

	case "whoami":
		token, ok := creds.Get(ctx, credential.AudienceStandard)
		if !ok {
			return fmt.Errorf("no stored token; run login first")
		}
		claims, err := credential.Claims(token)
		if err != nil {
			return err
		}
		for k, v := range claims {
			fmt.Printf("%s: %v\n", k, v)
		}
		return nil

	case "products":
		products, err := c.Products(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("%d\t%s\t%.2f %s\n", p.ID, p.Title, p.Price, p.Currency)
		}
		return nil

	case "promos":
		promos, err := c.Promos(ctx)
		if err != nil {
			return err
		}
		for _, p := range promos {
			fmt.Printf("%d\t%s\t-%d%%\n", p.ID, p.Code, p.Discount)
		}
		return nil

	case "assistants":
		assistants, err := c.Assistants(ctx)
		if err != nil {
			return err
		}
		for _, a := range assistants {
			fmt.Printf("%d\t%s\t@%s\n", a.ID, a.Name, a.Username)
		}
		return nil

	case "settings":
		settings, err := c.Settings(ctx)
		if err != nil {
			return err
		}
		for _, s := range settings {
			fmt.Println(s)
		}
		return nil

	case "get":
		if len(args) < 2 {
			return fmt.Errorf("get needs a path")
		}
		resp, err := c.Request(ctx, http.MethodGet, args[1], nil, nil)
		if err != nil {
			return err
		}
		if err := resp.Err(); err != nil {
			return err
		}
		fmt.Println(string(resp.Body))
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// credentialStorage picks the persistent store: Redis when configured,
// the credentials file otherwise.
func credentialStorage(cfg config.Config) storage.Store {
	if cfg.RedisAddr != "" {
		return storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), "storefront:")
	}
	return storage.NewFileStore(cfg.CredentialsFile)
}
