// Package glosslive provides a glossary-aware translation pipeline for live
// speech transcripts.
//
// Glosslive sits between a speech recognizer and an external machine
// translator. Each transcript is classified by script to pick a translation
// direction, known glossary terms are shielded behind markup placeholders the
// translator passes through untouched, and the placeholders are swapped for
// the preferred target-language terms once the translation returns.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/glosslive"
//	    "github.com/ZaguanLabs/glosslive/provider"
//	)
//
//	func main() {
//	    glossary, err := glosslive.LoadGlossary("glossary.json")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    t := glosslive.NewTranslator(provider.NewDeepLProvider(provider.DeepLConfig{}),
//	        glosslive.WithGlossary(glossary),
//	    )
//
//	    result, err := t.Translate(context.Background(), glosslive.Request{
//	        Text:       "사업자등록번호를 알려주세요",
//	        APIKey:     os.Getenv("DEEPL_API_KEY"),
//	        AutoDetect: true,
//	    })
//	    if err != nil {
//	        log.Fatal(glosslive.UserMessage(err))
//	    }
//	    fmt.Println(result.Translated)
//	}
package glosslive
