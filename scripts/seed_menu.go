package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"bistro/internal/catalog"
	"bistro/internal/cms"
	"bistro/internal/config"
	"bistro/internal/models"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to config.yaml")
		menuPath   = flag.String("menu", "configs/menu.yaml", "path to menu.yaml")
		dryRun     = flag.Bool("dry-run", false, "print the plan without writing")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	buckets, _, err := catalog.LoadStaticMenu(*menuPath)
	if err != nil {
		return err
	}
	if buckets.Len() == 0 {
		return fmt.Errorf("no items in %s", *menuPath)
	}

	client := cms.NewClient(cfg.CMS, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	auth, err := client.Login(ctx, cfg.CMS.Identifier, cfg.CMS.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	existing, err := client.ListMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("list menu: %w", err)
	}
	byName := make(map[string]models.MenuItem, len(existing))
	for _, it := range existing {
		byName[strings.ToLower(it.Name)] = it
	}

	created := 0
	updated := 0
	labels := buckets.Categories()
	sort.Strings(labels)
	for _, label := range labels {
		for _, it := range buckets[label] {
			if it.Name == "" {
				continue
			}
			input := models.MenuItemInput{
				Name:        it.Name,
				Price:       models.FormatAmount(it.PriceMinor),
				Category:    it.Category,
				Description: it.Description,
			}

			current, ok := byName[strings.ToLower(it.Name)]
			if *dryRun {
				fmt.Printf("%-8s %-10s %s %s\n", action(ok), label, it.Name, it.DisplayPrice())
				continue
			}
			if ok {
				if _, err = client.UpdateMenuItem(ctx, auth.JWT, current.ID, input); err != nil {
					return fmt.Errorf("update %s: %w", it.Name, err)
				}
				updated++
				continue
			}
			if _, err = client.CreateMenuItem(ctx, auth.JWT, input); err != nil {
				return fmt.Errorf("create %s: %w", it.Name, err)
			}
			created++
		}
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}

func action(exists bool) string {
	if exists {
		return "update"
	}
	return "create"
}
