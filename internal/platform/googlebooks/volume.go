package googlebooks

import "strings"

// VolumesPage matches the /volumes search response.
type VolumesPage struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

type Volume struct {
	ID         string      `json:"id"`
	VolumeInfo *VolumeInfo `json:"volumeInfo"`
}

type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	ImageLinks          ImageLinks           `json:"imageLinks"`
	Language            string               `json:"language"`
}

type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// ISBN13 returns the first ISBN_13 identifier, or "".
func (v *VolumeInfo) ISBN13() string {
	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			return strings.TrimSpace(id.Identifier)
		}
	}
	return ""
}
