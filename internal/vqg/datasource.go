package vqg

import (
	"regexp"
	"sort"
)

// DataSource describes a Wikibase instance: the namespaces used for its
// items and direct properties.
type DataSource struct {
	Name           string
	ItemPrefix     Prefix
	PropertyPrefix Prefix
}

// KnownDataSources lists the Wikibase instances the editor ships with.
var KnownDataSources = map[string]DataSource{
	"wikidata": {
		Name:           "wikidata",
		ItemPrefix:     Prefix{IRI: "http://www.wikidata.org/entity/", Abbreviation: "wd"},
		PropertyPrefix: Prefix{IRI: "http://www.wikidata.org/prop/direct/", Abbreviation: "wdt"},
	},
	"factgrid": {
		Name:           "factgrid",
		ItemPrefix:     Prefix{IRI: "https://database.factgrid.de/entity/", Abbreviation: "fg"},
		PropertyPrefix: Prefix{IRI: "https://database.factgrid.de/prop/direct/", Abbreviation: "fgt"},
	},
	"mimotext": {
		Name:           "mimotext",
		ItemPrefix:     Prefix{IRI: "https://data.mimotext.uni-trier.de/entity/", Abbreviation: "mmd"},
		PropertyPrefix: Prefix{IRI: "https://data.mimotext.uni-trier.de/prop/direct/", Abbreviation: "mmdt"},
	},
}

// DataSourceNames returns the known data source names, sorted.
func DataSourceNames() []string {
	names := make([]string, 0, len(KnownDataSources))
	for name := range KnownDataSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	bareItemID     = regexp.MustCompile(`^Q\d+$`)
	barePropertyID = regexp.MustCompile(`^P\d+$`)
)

// ApplyDataSource fills the empty prefixes of bare Wikibase ids: Q-ids on
// entities get the item namespace, P-ids in property trees get the
// property namespace. Ids that already carry a prefix are left alone.
func ApplyDataSource(conns []Connection, ds DataSource) []Connection {
	out := make([]Connection, len(conns))
	for i, c := range conns {
		c.Source = applyEntity(c.Source, ds)
		c.Target = applyEntity(c.Target, ds)
		props := make([]Property, len(c.Properties))
		for j, p := range c.Properties {
			props[j] = applyProperty(p, ds)
		}
		c.Properties = props
		out[i] = c
	}
	return out
}

func applyEntity(e Entity, ds DataSource) Entity {
	if e.Prefix.IsEmpty() && bareItemID.MatchString(e.ID) {
		e.Prefix = ds.ItemPrefix
	}
	return e
}

func applyProperty(p Property, ds DataSource) Property {
	if p.Prefix.IsEmpty() && barePropertyID.MatchString(p.ID) {
		p.Prefix = ds.PropertyPrefix
	}
	if len(p.Children) > 0 {
		children := make([]Property, len(p.Children))
		for i, child := range p.Children {
			children[i] = applyProperty(child, ds)
		}
		p.Children = children
	}
	return p
}
