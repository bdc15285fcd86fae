package amazon

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"bookfeed/internal/normalize"
)

type searchItemsResponse struct {
	SearchResult *struct {
		Items []item `json:"Items"`
	} `json:"SearchResult"`
	Errors []apiError `json:"Errors"`
}

type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

func (r searchItemsResponse) noResults() bool {
	for _, e := range r.Errors {
		if e.Code == "NoResults" {
			return true
		}
	}
	return false
}

func (r searchItemsResponse) errorCodes() string {
	codes := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		codes = append(codes, e.Code)
	}
	return strings.Join(codes, ",")
}

type displayString struct {
	DisplayValue string `json:"DisplayValue"`
}

type item struct {
	ASIN           string `json:"ASIN"`
	DetailPageURL  string `json:"DetailPageURL"`
	BrowseNodeInfo struct {
		BrowseNodes []struct {
			DisplayName     string `json:"DisplayName"`
			ContextFreeName string `json:"ContextFreeName"`
		} `json:"BrowseNodes"`
	} `json:"BrowseNodeInfo"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
	ItemInfo struct {
		ContentInfo struct {
			PagesCount *struct {
				DisplayValue int `json:"DisplayValue"`
			} `json:"PagesCount"`
			PublicationDate *displayString `json:"PublicationDate"`
		} `json:"ContentInfo"`
		ByLineInfo struct {
			Manufacturer *displayString `json:"Manufacturer"`
		} `json:"ByLineInfo"`
	} `json:"ItemInfo"`
}

// Offer is the commerce data merged into a book record. Zero fields were
// absent from the catalog item.
type Offer struct {
	ASIN          string
	AffiliateLink string
	CoverImage    string
	PageCount     *int
	PublishedDate normalize.Date
	Publisher     string
	Keywords      []string
}

func extractOffer(it item) Offer {
	o := Offer{
		ASIN:          it.ASIN,
		AffiliateLink: it.DetailPageURL,
		CoverImage:    it.Images.Primary.Large.URL,
	}

	seen := make(map[string]struct{})
	for _, node := range it.BrowseNodeInfo.BrowseNodes {
		for _, name := range []string{node.DisplayName, node.ContextFreeName} {
			kw := strings.ToLower(name)
			if kw == "" || !validKeyword(kw) {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			o.Keywords = append(o.Keywords, kw)
		}
	}
	sort.Strings(o.Keywords)

	ci := it.ItemInfo.ContentInfo
	if ci.PagesCount != nil && ci.PagesCount.DisplayValue > 0 {
		n := ci.PagesCount.DisplayValue
		o.PageCount = &n
	}
	if ci.PublicationDate != nil {
		o.PublishedDate = parsePublicationDate(ci.PublicationDate.DisplayValue)
	}
	if m := it.ItemInfo.ByLineInfo.Manufacturer; m != nil {
		o.Publisher = m.DisplayValue
	}
	return o
}

// validKeyword drops generic "genre fiction" nodes and internal node codes
// such as "books_2024_q3".
func validKeyword(kw string) bool {
	if strings.Contains(kw, "genre fiction") {
		return false
	}
	if strings.Contains(kw, "_") && strings.IndexFunc(kw, unicode.IsDigit) >= 0 {
		return false
	}
	return true
}

func parsePublicationDate(s string) normalize.Date {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return normalize.DateFromTime(t)
	}
	if d, ok := normalize.ParseDate(s); ok {
		return d
	}
	return normalize.Date{}
}
