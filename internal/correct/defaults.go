package correct

// DefaultTable returns the built-in table for policy.
//
// The exact table fixes typos found in the dataset and drops values that are
// not emotions. The normalized table folds case and spacing variants of
// category and emotion names onto one canonical spelling.
func DefaultTable(policy Policy) Table {
	if policy == PolicyNormalized {
		return normalizedDefaults.Clone()
	}
	return exactDefaults.Clone()
}

var exactDefaults = Table{
	// Emotions
	"facination":    Replace("fascination"),
	"fascinaton":    Replace("fascination"),
	"suprise":       Replace("surprise"),
	"surprsie":      Replace("surprise"),
	"mélancholie":   Replace("mélancolie"),
	"melancolie":    Replace("mélancolie"),
	"nostalgy":      Replace("nostalgie"),
	"sérénitée":     Replace("sérénité"),
	"émerveilement": Replace("émerveillement"),
	"inquietude":    Replace("inquiétude"),
	"mémoire":       Remove(),
	"souvenir":      Remove(),

	// Categories
	"temps et vécu":      Replace("temps vécu"),
	"paysage urbains":    Replace("paysages urbains"),
	"portait":            Replace("portrait"),
	"abstaction":         Replace("abstraction"),
	"nature morte ":      Replace("nature morte"),
	"memoire collective": Replace("mémoire collective"),
}

var normalizedDefaults = Table{
	"temps et vécu":      Replace("temps vécu"),
	"temps vecu":         Replace("temps vécu"),
	"paysage urbain":     Replace("paysages urbains"),
	"paysages urbain":    Replace("paysages urbains"),
	"portraits":          Replace("portrait"),
	"nature-morte":       Replace("nature morte"),
	"natures mortes":     Replace("nature morte"),
	"abstrait":           Replace("abstraction"),
	"mémoire-collective": Replace("mémoire collective"),
	"facination":         Replace("fascination"),
	"suprise":            Replace("surprise"),
	"joie de vivre":      Replace("joie"),
	"mélancholie":        Replace("mélancolie"),
	"sérénitée":          Replace("sérénité"),
}
