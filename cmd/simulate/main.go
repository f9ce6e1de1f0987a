// Headless scenario runner: plays a preset scenario with a simple
// buy-and-hold policy and prints the equity curve. Useful for eyeballing
// the market engine's behavior under each category's event schedule.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"tradeTutor/internal/domain"
	"tradeTutor/internal/ledger"
	"tradeTutor/internal/market"
	"tradeTutor/internal/scenario"
)

func main() {
	category := flag.String("category", "crisis", "scenario category: crisis, growth, volatility, event-driven")
	symbol := flag.String("symbol", "AAPL", "symbol to buy and hold")
	quantity := flag.Int64("quantity", 100, "quantity to buy on day 1")
	seed := flag.Int64("seed", 42, "engine seed")
	flag.Parse()

	sc := scenario.Preset(domain.Category(*category))
	if sc == nil {
		log.Fatalf("no preset scenario for category %q", *category)
	}

	now := time.Now().UTC()
	assets := market.DefaultCatalog()
	engine := market.NewEngine(*seed, 1)
	pf := domain.NewPortfolio("sim", "sim-user", sc.InitialCash, now)

	fmt.Printf("%s (%s, %d days, starting cash %s)\n\n", sc.Title, sc.Category, sc.Duration, sc.InitialCash)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Day\tPrice\tTotalValue\tP/L%\tEvents\t")

	var trades []*domain.Trade
	for day := 1; day <= sc.Duration; day++ {
		conditions := sc.ConditionsForDay(day)
		assets = engine.AdvanceDay(assets, conditions)
		ledger.Revalue(pf, assets)

		if day == 1 {
			asset := findAsset(assets, *symbol)
			if asset == nil {
				log.Fatalf("unknown symbol %q", *symbol)
			}
			trade, err := ledger.ExecuteTrade(pf, asset, domain.Buy, *quantity, sc.InitialCash, now)
			if err != nil {
				log.Fatalf("day 1 buy failed: %v", err)
			}
			trades = append(trades, trade)
		}

		ledger.AppendMetric(pf, sc.InitialCash, now.AddDate(0, 0, day))

		last := pf.Performance[len(pf.Performance)-1]
		price := "-"
		if a := findAsset(assets, *symbol); a != nil {
			price = a.Price.StringFixed(2)
		}
		events := ""
		for _, c := range conditions {
			events += string(c.Impact) + " " + string(c.EventType) + "; "
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t\n",
			day, price, last.TotalValue.StringFixed(2), last.ProfitLossPercent, events)
	}
	w.Flush()

	summary := scenario.Summarize(sc, pf, trades)
	fmt.Printf("\nfinal value %s, return %.2f%%, max drawdown %.2f%%, %d trades over %d days\n",
		summary.FinalValue.StringFixed(2), summary.ReturnPercent, summary.MaxDrawdown*100,
		summary.TotalTrades, summary.DaysPlayed)
}

func findAsset(assets []*domain.Asset, symbol string) *domain.Asset {
	for _, a := range assets {
		if a.Symbol == symbol {
			return a
		}
	}
	return nil
}
