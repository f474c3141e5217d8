package main

import (
	_ "embed"

	"github.com/leonelquinteros/gotext"
)

var (
	//go:embed locale/ja.po
	jaPO []byte
	//go:embed locale/en.po
	enPO []byte
)

var catalog = loadCatalog(gsdef.Language)

func loadCatalog(lang string) *gotext.Po {
	po := gotext.NewPo()
	switch lang {
	case "en":
		po.Parse(enPO)
	default:
		po.Parse(jaPO)
	}
	return po
}

func setLanguage(lang string) { catalog = loadCatalog(lang) }

// tr looks up a status string in the active language.
func tr(id string, vars ...interface{}) string {
	return catalog.Get(id, vars...)
}
