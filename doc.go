// Package syllabify inserts visible syllable separators into text, HTML
// pages and Markdown documents, as a reading aid.
//
// # Quick Start
//
// Create an annotator, annotate a document, and close when done:
//
//	ann, err := syllabify.NewAnnotator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ann.Close()
//
//	result, err := ann.Annotate(ctx, syllabify.Input{
//	    Content: "Everything wanted was reading.",
//	    Format:  syllabify.FormatText,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.html", result.HTML, 0644)
//
// Words are split on vowel clusters ("wanted" becomes "want·ed"); words
// shorter than three letters, text already carrying the separator, and the
// content of script, style, code and editable elements are left alone.
//
// # Annotation Pipeline
//
//  1. Input conversion: Markdown via Goldmark (GFM, syntax highlighting),
//     plain text as paragraphs, HTML as is
//  2. Region discovery: the document body, or the elements matching a CSS
//     selector (WithRegions)
//  3. Segmentation of every eligible text node, in document order
//  4. Style injection and, with Input.PDF, rendering via headless Chrome
//
// # Configuration
//
//	ann, err := syllabify.NewAnnotator(
//	    syllabify.WithBackend("patterns"),
//	    syllabify.WithPatterns("en-basic"),
//	    syllabify.WithMinWordLength(5),
//	    syllabify.WithRegions(`[data-lyrics-container="true"]`),
//	    syllabify.WithSkipBracketed(true),
//	)
//
// # Live Documents
//
// A Session keeps a document annotated while content is inserted into it,
// either as each insertion arrives or, in debounced mode, once insertions
// stop:
//
//	sess, err := ann.NewSession(ctx, page)
//	defer sess.Close()
//	annotated, err := sess.Append(ctx, "<p>Another verse arrives</p>")
//
// # Web Pages
//
// FetchPage renders a page in headless Chrome and returns its DOM once its
// scripts have settled:
//
//	page, err := ann.FetchPage(ctx, "https://example.com/song")
//	result, err := ann.Annotate(ctx, syllabify.Input{Content: page, BaseURL: "https://example.com/song"})
//
// For parallel browser work, use an AnnotatorPool.
//
// # Custom Assets
//
// WithAssetPath points to a directory overriding the embedded assets:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── patterns/
//	    └── en-full.pat.txt.xz
package syllabify
