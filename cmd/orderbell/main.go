package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/app"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/credential"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway/local"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/gateway/rest"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/notify"
	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/sound"
	appsync "github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/sync"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	offline := flag.Bool("offline", false, "use the embedded local backend")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	role := model.Role(cfg.Backend.Role)
	if !role.Known() {
		fmt.Fprintf(os.Stderr, "Unknown role %q in config; use admin, cs, or advertiser\n", cfg.Backend.Role)
		os.Exit(1)
	}

	gw, cleanup, err := openGateway(cfg, *offline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening backend: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	store := notify.NewStore()
	player := sound.NewPlayer(cfg.Display.Sound)
	manager := appsync.New(gw, store, player, cfg.Display.PageSize)
	defer manager.Stop()

	m := app.New(manager, store, cfg.Backend.RecipientID, role)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// openGateway selects the embedded SQLite backend or the hosted REST one.
func openGateway(cfg *model.AppConfig, forceOffline bool) (gateway.Gateway, func(), error) {
	if forceOffline || cfg.Offline {
		backend, err := local.Open(cfg.OfflineDBPath, cfg.Backend.RecipientID)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { backend.Close() }, nil
	}

	if cfg.Backend.BaseURL == "" {
		return nil, nil, fmt.Errorf("backend.base_url is not configured; set it in %s or run with --offline", model.DefaultConfigPath())
	}

	token := credential.BackendToken()
	if token == "" {
		return nil, nil, fmt.Errorf("no backend token found; set ORDERBELL_TOKEN or store one with key %q", credential.TokenKey)
	}

	timeout := time.Duration(cfg.Backend.TimeoutSec) * time.Second
	client := rest.NewClient(cfg.Backend.BaseURL, token, cfg.Backend.RecipientID, timeout)
	return client, func() {}, nil
}
