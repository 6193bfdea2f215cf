// Package chocolatey consumes the community OData v2 Atom XML feed
// (spec.md §4.3.2): $skip/$top pagination for the first 10,000 records,
// then cursor-based $skiptoken pagination by following each response's
// <link rel="next"> until the feed is exhausted.
package chocolatey

import (
	"encoding/xml"
)

const feedBase = "https://community.chocolatey.org/api/v2/Packages"

// feedBaseOverride lets tests point FetchAll/FetchOne at a local mock
// server instead of the real upstream feed.
var feedBaseOverride = feedBase

// atomFeed is the subset of the OData Atom XML response this provider
// needs: the package entries and the next-page link.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	Properties atomProperties `xml:"properties"`
}

type atomProperties struct {
	ID          string `xml:"Id"`
	Title       string `xml:"Title"`
	Version     string `xml:"Version"`
	Description string `xml:"Description"`
	Authors     string `xml:"Authors"`
	ProjectURL  string `xml:"ProjectUrl"`
	LicenseURL  string `xml:"LicenseUrl"`
	Tags        string `xml:"Tags"`
}

func (f *atomFeed) nextLink() (string, bool) {
	for _, l := range f.Links {
		if l.Rel == "next" {
			return l.Href, true
		}
	}
	return "", false
}

func firstURL() string {
	return feedBaseOverride + `?$filter=IsLatestVersion%20eq%20true&$orderby=Id`
}
