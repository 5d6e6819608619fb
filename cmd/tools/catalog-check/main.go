// cmd/tools/catalog-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"delivery-engine/internal/catalog"
	"delivery-engine/internal/models"
)

const defaultFixturesDir = "internal/catalog/fixtures"

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateDir := validateCmd.String("dir", defaultFixturesDir, "Directory holding the fixture documents")

	summaryCmd := flag.NewFlagSet("summary", flag.ExitOnError)
	summaryDir := summaryCmd.String("dir", defaultFixturesDir, "Directory holding the fixture documents")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateFixtures(*validateDir); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog validation passed.")

	case "summary":
		summaryCmd.Parse(os.Args[2:])
		if err := printSummary(*summaryDir); err != nil {
			fmt.Printf("Error reading catalog: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

// validateFixtures runs every document through its JSON schema, then checks
// the references between documents that schemas cannot express.
func validateFixtures(dir string) error {
	names := make([]string, 0, len(catalog.Schemas))
	for name := range catalog.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := catalog.ValidateDocument(name, data); err != nil {
			return err
		}
		fmt.Printf("  %-12s ok\n", name)
	}

	return crossCheck(dir)
}

func crossCheck(dir string) error {
	restaurants, err := decodeDocument[models.Restaurant](dir, "restaurants")
	if err != nil {
		return err
	}
	menuItems, err := decodeDocument[models.MenuItem](dir, "menu_items")
	if err != nil {
		return err
	}
	promos, err := decodeDocument[models.PromoCode](dir, "promo_codes")
	if err != nil {
		return err
	}

	restaurantIDs := make(map[string]bool, len(restaurants))
	for _, r := range restaurants {
		if restaurantIDs[r.ID] {
			return fmt.Errorf("duplicate restaurant ID: %s", r.ID)
		}
		restaurantIDs[r.ID] = true
	}

	itemIDs := make(map[string]bool, len(menuItems))
	for _, item := range menuItems {
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate menu item ID: %s", item.ID)
		}
		itemIDs[item.ID] = true
		if !restaurantIDs[item.RestaurantID] {
			return fmt.Errorf("menu item %s references unknown restaurant %s", item.ID, item.RestaurantID)
		}
	}

	codes := make(map[string]bool, len(promos))
	for _, p := range promos {
		if codes[p.Code] {
			return fmt.Errorf("duplicate promo code: %s", p.Code)
		}
		codes[p.Code] = true
		if p.Percent == 0 && p.AmountOff == 0 {
			return fmt.Errorf("promo code %s grants no discount", p.Code)
		}
	}

	return nil
}

func printSummary(dir string) error {
	restaurants, err := decodeDocument[models.Restaurant](dir, "restaurants")
	if err != nil {
		return err
	}
	menuItems, err := decodeDocument[models.MenuItem](dir, "menu_items")
	if err != nil {
		return err
	}
	users, err := decodeDocument[models.User](dir, "users")
	if err != nil {
		return err
	}
	drivers, err := decodeDocument[models.Driver](dir, "drivers")
	if err != nil {
		return err
	}
	promos, err := decodeDocument[models.PromoCode](dir, "promo_codes")
	if err != nil {
		return err
	}

	open := 0
	for _, r := range restaurants {
		if r.IsOpen {
			open++
		}
	}
	active := 0
	for _, p := range promos {
		if p.Active {
			active++
		}
	}

	fmt.Printf("Restaurants: %d (%d open)\n", len(restaurants), open)
	fmt.Printf("Menu items:  %d\n", len(menuItems))
	fmt.Printf("Users:       %d\n", len(users))
	fmt.Printf("Drivers:     %d\n", len(drivers))
	fmt.Printf("Promo codes: %d (%d active)\n", len(promos), active)
	return nil
}

func decodeDocument[T any](dir, name string) ([]T, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return out, nil
}

func help() {
	fmt.Println(`
Usage: catalog-check <command> [flags]

Commands:
  validate  Check every fixture document against its schema and cross-references
  summary   Print document counts
  help      Show this help message

Examples:
  catalog-check validate
  catalog-check validate -dir internal/catalog/fixtures
  catalog-check summary`)
}
