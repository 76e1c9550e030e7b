// Command basket-demo prices the Acme example baskets and prints a report.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/acme-basket/internal/domain/basket"
	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/rules"
)

type example struct {
	title string
	codes []string
}

var examples = []example{
	{title: "Example 1: Blue + Green Widget", codes: []string{"B01", "G01"}},
	{title: "Example 2: Two Red Widgets (offer applies!)", codes: []string{"R01", "R01"}},
	{title: "Example 3: Red + Green Widget", codes: []string{"R01", "G01"}},
	{title: "Example 4: Mixed basket with offer", codes: []string{"B01", "B01", "R01", "R01", "R01"}},
}

func main() {
	var rulesFile string
	flag.StringVar(&rulesFile, "rules", "", "pricing rules YAML file (built-in Acme rules when empty)")
	flag.Parse()

	set, err := rules.Load(rulesFile)
	if err != nil {
		slog.Error("load rules failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := render(os.Stdout, set, examples); err != nil {
		slog.Error("demo failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func dollars(m money.Money) string {
	return "$" + m.StringFixed(2)
}

func render(w io.Writer, set *rules.Set, examples []example) error {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "ACME WIDGET CO - Sales System Demo")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	for _, ex := range examples {
		if err := renderBasket(w, set, ex); err != nil {
			return errors.Wrap(err, ex.title)
		}
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Delivery Rules:")
	tiers := set.Delivery.Tiers()
	if len(tiers) == 0 {
		fmt.Fprintf(w, "  - All orders: %s delivery\n", dollars(set.Delivery.Fallback()))
	} else {
		lowest := tiers[len(tiers)-1]
		fmt.Fprintf(w, "  - Orders under %s: %s delivery\n", dollars(lowest.Threshold), dollars(set.Delivery.Fallback()))
		for i := len(tiers) - 1; i >= 0; i-- {
			t := tiers[i]
			cost := dollars(t.Cost) + " delivery"
			if t.Cost.IsZero() {
				cost = "FREE delivery"
			}
			fmt.Fprintf(w, "  - Orders %s and over: %s\n", dollars(t.Threshold), cost)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Current Offers:")
	if len(set.Offers) == 0 {
		fmt.Fprintln(w, "  - none")
	}
	for _, o := range set.Offers {
		fmt.Fprintf(w, "  - %s\n", o.Name())
	}
	fmt.Fprintln(w, rule)

	return nil
}

func renderBasket(w io.Writer, set *rules.Set, ex example) error {
	fmt.Fprintln(w, ex.title)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	b := basket.New(set.Catalogue, set.Delivery, set.Offers)
	for _, code := range ex.codes {
		if err := b.Add(code); err != nil {
			return err
		}
	}
	for _, p := range b.Items() {
		fmt.Fprintf(w, "  Added: %s (%s) - %s\n", p.Name, p.Code, dollars(p.Price))
	}

	total, err := b.Total()
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Subtotal: %s\n", dollars(b.Subtotal()))
	fmt.Fprintf(w, "  Total:    %s\n", dollars(total))
	fmt.Fprintln(w)
	return nil
}
