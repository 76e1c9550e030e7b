// Package rules loads the pricing configuration of a shop: its catalogue,
// delivery tiers and offers.
package rules

import (
	_ "embed"
	"os"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xenking/acme-basket/internal/domain/catalogue"
	"github.com/xenking/acme-basket/internal/domain/delivery"
	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/domain/offer"
	"github.com/xenking/acme-basket/internal/domain/product"
)

//go:embed default.yaml
var defaultRules []byte

// File is the YAML document layout. Amounts are decimal strings so they are
// never routed through float64.
type File struct {
	Catalogue []ProductEntry `yaml:"catalogue"`
	Delivery  DeliveryEntry  `yaml:"delivery"`
	Offers    []OfferEntry   `yaml:"offers"`
}

type ProductEntry struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type DeliveryEntry struct {
	Fallback string      `yaml:"fallback"`
	Tiers    []TierEntry `yaml:"tiers"`
}

type TierEntry struct {
	Threshold string `yaml:"threshold"`
	Cost      string `yaml:"cost"`
}

type OfferEntry struct {
	Type        string `yaml:"type"`
	Product     string `yaml:"product"`
	Value       string `yaml:"value"`
	Description string `yaml:"description"`
}

// Set is a validated, ready to use pricing configuration. Its parts are
// read-only and may be shared by any number of baskets.
type Set struct {
	Catalogue *catalogue.Catalogue
	Delivery  *delivery.Policy
	Offers    []offer.Offer
}

// Default returns the built-in Acme rules.
func Default() (*Set, error) {
	s, err := Parse(defaultRules)
	if err != nil {
		return nil, errors.Wrap(err, "default rules")
	}
	return s, nil
}

// Load reads rules from path, or returns Default when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read rules file")
	}

	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "rules file %s", path)
	}
	return s, nil
}

// Parse decodes and validates a YAML rules document.
func Parse(data []byte) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	return f.Build()
}

// Build validates the document and constructs the domain objects.
func (f *File) Build() (*Set, error) {
	products, err := f.Products()
	if err != nil {
		return nil, err
	}
	cat := catalogue.New(products)

	policy, err := f.Delivery.Build()
	if err != nil {
		return nil, errors.Wrap(err, "delivery")
	}

	offers, err := f.BuildOffers(cat)
	if err != nil {
		return nil, err
	}

	return &Set{Catalogue: cat, Delivery: policy, Offers: offers}, nil
}

// Products parses the catalogue entries.
func (f *File) Products() ([]product.Product, error) {
	if len(f.Catalogue) == 0 {
		return nil, errors.New("catalogue is empty")
	}

	products := make([]product.Product, 0, len(f.Catalogue))
	for i, e := range f.Catalogue {
		if e.Code == "" {
			return nil, errors.Errorf("catalogue entry %d: code is required", i)
		}
		p, err := product.New(e.Code, e.Name, e.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "catalogue entry %d", i)
		}
		if p.Price.IsNegative() {
			return nil, errors.Errorf("catalogue entry %d: product %s has negative price", i, e.Code)
		}
		products = append(products, p)
	}
	return products, nil
}

// Build constructs the delivery policy.
func (d DeliveryEntry) Build() (*delivery.Policy, error) {
	fallback, err := money.Parse(d.Fallback)
	if err != nil {
		return nil, errors.Wrap(err, "fallback")
	}

	tiers := make([]delivery.Tier, 0, len(d.Tiers))
	for i, t := range d.Tiers {
		threshold, err := money.Parse(t.Threshold)
		if err != nil {
			return nil, errors.Wrapf(err, "tier %d threshold", i)
		}
		cost, err := money.Parse(t.Cost)
		if err != nil {
			return nil, errors.Wrapf(err, "tier %d cost", i)
		}
		tiers = append(tiers, delivery.Tier{Threshold: threshold, Cost: cost})
	}

	return delivery.NewPolicy(tiers, fallback), nil
}

// BuildOffers constructs the offers, rejecting any that name a product the
// catalogue does not carry.
func (f *File) BuildOffers(cat *catalogue.Catalogue) ([]offer.Offer, error) {
	offers := make([]offer.Offer, 0, len(f.Offers))
	for i, e := range f.Offers {
		if _, ok := cat.Find(e.Product); !ok {
			return nil, errors.Errorf("offer %d: product %q is not in the catalogue", i, e.Product)
		}

		value := decimal.Zero
		if e.Value != "" {
			v, err := decimal.NewFromString(e.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "offer %d value", i)
			}
			value = v
		}

		o, err := offer.FromRule(offer.Rule{
			Type:        offer.DiscountType(e.Type),
			ProductCode: e.Product,
			Value:       value,
			Description: e.Description,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "offer %d", i)
		}
		offers = append(offers, o)
	}
	return offers, nil
}
