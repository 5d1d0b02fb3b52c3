package model

// Site represents one monitored page as configured in sites.json.
// The struct is immutable during a run: the monitor reads the site list once
// at startup and never writes it back.
//
// Design decision: validation rules live as struct tags here, but validation
// itself happens at the load boundary in the config package. Keeping the tags
// next to the fields documents what a well-formed record looks like without
// pulling the validator dependency into every package that passes a Site
// around.
type Site struct {
	// ID uniquely identifies the site. It keys the history map and links
	// status entries to archived checks, so it must be stable across runs.
	ID string `json:"id" validate:"required"`

	// Name is the human-readable label shown in status output.
	Name string `json:"name" validate:"required"`

	// URL is the page to fetch. When Encrypted is true this holds the
	// base64 ciphertext produced by "webwatch encrypt" instead of the
	// plaintext URL.
	URL string `json:"url" validate:"required"`

	// Encrypted marks URL as ciphertext that must be decrypted with the
	// operator secret before fetching. Status output keeps showing the
	// ciphertext so the plaintext URL never lands in a world-readable file.
	Encrypted bool `json:"encrypted"`

	// Selector optionally restricts text extraction to the matching CSS
	// selector. Empty means the whole document.
	Selector string `json:"selector"`

	// ExcludeSelectors lists CSS selectors whose matches are removed from
	// the document before text extraction, in order. Used to cut page
	// regions that change on every request (ads, tickers, session widgets).
	ExcludeSelectors []string `json:"exclude_selectors"`

	// Description is free-form operator notes. Not interpreted.
	Description string `json:"description"`
}

// SitesFile is the top-level shape of sites.json.
type SitesFile struct {
	// Sites is the ordered list of monitored pages. Check order and
	// status.json output order follow this list.
	Sites []Site `json:"sites" validate:"required,dive"`
}
