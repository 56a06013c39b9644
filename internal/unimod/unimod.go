package unimod

import "encoding/xml"

// Types for parsing Unimod XML dumps

// Unimod holds only the part of the Unimod database dump in which we
// are interested.
type Unimod struct {
	content unimodContent
}

type unimodContent struct {
	XMLName xml.Name `xml:"unimod"`
	Mods    []mod    `xml:"modifications>mod"`
}

type mod struct {
	Title            string        `xml:"title,attr"`
	FullName         string        `xml:"full_name,attr"`
	RecordID         string        `xml:"record_id,attr"`
	UsernameOfPoster string        `xml:"username_of_poster,attr"`
	Specificities    []specificity `xml:"specificity"`
	Delta            delta         `xml:"delta"`
}

type specificity struct {
	Site           string `xml:"site,attr"`
	Position       string `xml:"position,attr"`
	Classification string `xml:"classification,attr"`
	Hidden         string `xml:"hidden,attr"`
}

type delta struct {
	// Kept as attribute text; the catalog validates numeric masses.
	MonoMass string `xml:"mono_mass,attr"`
}
