package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/di"
	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	"github.com/sablalpz/GreenEnergy-Insights/internal/service/esios"
	"github.com/sablalpz/GreenEnergy-Insights/internal/services/generator"
	"github.com/sablalpz/GreenEnergy-Insights/pkg/config"
)

// backfill loads historical hourly readings into ClickHouse, either from the
// grid operator REST API or from the synthetic generator for local setups.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	baseURL := flag.String("url", "https://api.esios.ree.es", "indicator API base URL")
	apiKey := flag.String("api-key", "", "indicator API key")
	fromStr := flag.String("from", "", "start date (YYYY-MM-DD)")
	days := flag.Int("days", 30, "number of days to load")
	synthetic := flag.Bool("synthetic", false, "generate synthetic readings instead of calling the API")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	from := time.Now().UTC().Truncate(time.Hour).AddDate(0, 0, -*days)
	if *fromStr != "" {
		from, err = time.Parse("2006-01-02", *fromStr)
		if err != nil {
			log.Fatalf("bad -from date: %v", err)
		}
	}
	to := from.Add(time.Duration(*days) * 24 * time.Hour)

	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer chClient.Close()
	store := di.ProvideReadingStorage(chClient, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *synthetic {
		gen := generator.New(generator.DefaultPriceConfig())
		readings := gen.Readings(from, *days*24)
		batch := make([]*models.MeterReading, len(readings))
		for i := range readings {
			batch[i] = &readings[i]
		}
		if err := store.StoreBatch(ctx, batch); err != nil {
			log.Fatalf("store synthetic batch: %v", err)
		}
		log.Printf("seeded %d synthetic readings from %s", len(batch), from.Format("2006-01-02"))
		return
	}

	client := esios.New(*baseURL, *apiKey, 30*time.Second)
	for _, indicator := range []models.Indicator{models.IndicatorPrice, models.IndicatorDemand} {
		readings, err := client.FetchRange(ctx, indicator, from, to)
		if err != nil {
			log.Fatalf("fetch %s: %v", indicator, err)
		}
		if err := store.StoreBatch(ctx, readings); err != nil {
			log.Fatalf("store %s: %v", indicator, err)
		}
		log.Printf("loaded %d %s readings", len(readings), indicator)
	}
}
