// Package profile maps donor countries to the language and source domains
// used when building search queries. Unknown donors fall back to a generic
// English profile; every profile additionally carries the shared
// international, recipient-government and OSINT domains.
package profile

import "strings"

// Profile describes where and in which language a donor's aid reporting
// is likeliest to surface.
type Profile struct {
	Donor    string
	Language string // BCP-47 tag
	News     []string
	Gov      []string
}

var aliases = map[string]string{
	"usa":                      "united states",
	"us":                       "united states",
	"united states of america": "united states",
	"uk":                       "united kingdom",
	"great britain":            "united kingdom",
	"britain":                  "united kingdom",
	"gb":                       "united kingdom",
	"czechia":                  "czech republic",
	"republic of korea":        "south korea",
	"korea":                    "south korea",
}

var (
	genericNews = []string{"reuters.com", "apnews.com", "bbc.com", "politico.eu", "euractiv.com", "ft.com", "aljazeera.com"}
	genericGov  = []string{"nato.int", "europa.eu", "eeas.europa.eu"}

	euInstitutions = []string{"consilium.europa.eu", "ec.europa.eu", "europa.eu", "eeas.europa.eu", "europarl.europa.eu"}
	ifis           = []string{"worldbank.org", "ebrd.com", "eib.org", "coebank.org", "imf.org"}
	recipientGov   = []string{"president.gov.ua", "kmu.gov.ua", "mfa.gov.ua", "mod.gov.ua", "minfin.gov.ua"}
	security       = []string{"nato.int", "osce.org", "undp.org", "unicef.org", "who.int"}
	osint          = []string{"sipri.org", "oryxspioenkop.com", "mil.in.ua", "ukdefencejournal.org.uk"}
)

var profiles = map[string]Profile{
	"united states": {
		Language: "en",
		News:     []string{"reuters.com", "apnews.com", "nytimes.com", "washingtonpost.com", "politico.com"},
		Gov:      []string{"defense.gov", "state.gov", "whitehouse.gov", "treasury.gov", "usaid.gov"},
	},
	"united kingdom": {
		Language: "en",
		News:     []string{"bbc.co.uk", "theguardian.com", "ft.com", "telegraph.co.uk", "sky.com"},
		Gov:      []string{"gov.uk", "parliament.uk", "army.mod.uk", "royalnavy.mod.uk"},
	},
	"canada": {
		Language: "en",
		News:     []string{"cbc.ca", "ctvnews.ca", "globalnews.ca", "theglobeandmail.com"},
		Gov:      []string{"canada.ca", "forces.gc.ca", "international.gc.ca", "pm.gc.ca"},
	},
	"germany": {
		Language: "de",
		News:     []string{"tagesschau.de", "zeit.de", "faz.net", "spiegel.de", "sueddeutsche.de", "welt.de"},
		Gov:      []string{"bundesregierung.de", "bmvg.de", "auswaertiges-amt.de", "bmz.de", "kfw.de"},
	},
	"france": {
		Language: "fr",
		News:     []string{"lemonde.fr", "lefigaro.fr", "liberation.fr", "france24.com"},
		Gov:      []string{"gouvernement.fr", "elysee.fr", "diplomatie.gouv.fr", "defense.gouv.fr"},
	},
	"italy": {
		Language: "it",
		News:     []string{"repubblica.it", "corriere.it", "ansa.it", "rainews.it"},
		Gov:      []string{"governo.it", "esteri.it", "difesa.it", "mef.gov.it"},
	},
	"spain": {
		Language: "es",
		News:     []string{"elpais.com", "elmundo.es", "abc.es", "rtve.es"},
		Gov:      []string{"lamoncloa.gob.es", "exteriores.gob.es", "defensa.gob.es"},
	},
	"netherlands": {
		Language: "nl",
		News:     []string{"nos.nl", "nrc.nl", "volkskrant.nl", "telegraaf.nl"},
		Gov:      []string{"rijksoverheid.nl", "defensie.nl", "minbuza.nl"},
	},
	"poland": {
		Language: "pl",
		News:     []string{"tvn24.pl", "wyborcza.pl", "rp.pl", "onet.pl", "polsatnews.pl"},
		Gov:      []string{"gov.pl", "mon.gov.pl", "msz.gov.pl", "kprm.gov.pl"},
	},
	"czech republic": {
		Language: "cs",
		News:     []string{"idnes.cz", "seznamzpravy.cz", "novinky.cz", "ct24.ceskatelevize.cz"},
		Gov:      []string{"vlada.cz", "mzv.cz", "army.cz"},
	},
	"sweden": {
		Language: "sv",
		News:     []string{"svt.se", "dn.se", "svd.se", "aftonbladet.se"},
		Gov:      []string{"regeringen.se", "gov.se", "forsvarsmakten.se"},
	},
	"denmark": {
		Language: "da",
		News:     []string{"dr.dk", "politiken.dk", "berlingske.dk", "tv2.dk"},
		Gov:      []string{"um.dk", "fmn.dk", "fm.dk"},
	},
	"norway": {
		Language: "no",
		News:     []string{"nrk.no", "vg.no", "aftenposten.no"},
		Gov:      []string{"regjeringen.no", "forsvaret.no"},
	},
	"finland": {
		Language: "fi",
		News:     []string{"yle.fi", "hs.fi", "iltalehti.fi"},
		Gov:      []string{"valtioneuvosto.fi", "defmin.fi", "um.fi"},
	},
	"estonia": {
		Language: "et",
		News:     []string{"err.ee", "postimees.ee", "delfi.ee"},
		Gov:      []string{"valitsus.ee", "mfa.ee", "kaitseministeerium.ee"},
	},
	"latvia": {
		Language: "lv",
		News:     []string{"lsm.lv", "delfi.lv", "tvnet.lv"},
		Gov:      []string{"mk.gov.lv", "mfa.gov.lv", "mod.gov.lv"},
	},
	"lithuania": {
		Language: "lt",
		News:     []string{"lrt.lt", "15min.lt", "delfi.lt"},
		Gov:      []string{"lrv.lt", "urm.lt", "kam.lt"},
	},
	"turkey": {
		Language: "tr",
		News:     []string{"aa.com.tr", "hurriyet.com.tr", "ntv.com.tr", "trthaber.com"},
		Gov:      []string{"msb.gov.tr", "mfa.gov.tr", "tccb.gov.tr"},
	},
	"south korea": {
		Language: "ko",
		News:     []string{"yna.co.kr", "koreaherald.com", "koreatimes.co.kr"},
		Gov:      []string{"mnd.go.kr", "mofa.go.kr"},
	},
	"japan": {
		Language: "ja",
		News:     []string{"nhk.or.jp", "asahi.com", "nikkei.com"},
		Gov:      []string{"mod.go.jp", "mofa.go.jp", "kantei.go.jp"},
	},
	"australia": {
		Language: "en",
		News:     []string{"abc.net.au", "smh.com.au", "news.com.au"},
		Gov:      []string{"defence.gov.au", "pm.gov.au", "dfat.gov.au"},
	},
}

// Normalize resolves donor aliases to the canonical profile key
func Normalize(donor string) string {
	key := strings.ToLower(strings.TrimSpace(donor))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// Lookup returns the profile for a donor, with the shared international
// domains appended. Unknown donors get the generic English profile.
func Lookup(donor string) Profile {
	key := Normalize(donor)
	p, ok := profiles[key]
	if !ok {
		p = Profile{Language: "en", News: genericNews, Gov: genericGov}
	}
	p.Donor = key
	p.News = dedup(append(append([]string{}, p.News...), osint...))
	p.Gov = dedup(concat(p.Gov, euInstitutions, ifis, recipientGov, security))
	return p
}

// Language returns just the donor's language tag
func Language(donor string) string {
	return Lookup(donor).Language
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// dedup keeps the first occurrence, preserving order
func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
