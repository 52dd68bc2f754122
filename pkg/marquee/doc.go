// Package marquee resolves how an issue or event is displayed: its title,
// subtitle and tree label, a one-line message, and a source location.
//
// Quick start:
//
//	r := marquee.New(marquee.WithFeatures(marquee.FeatureGroupingTitleUI))
//
//	res, err := r.Resolve([]byte(`{"id":"1","type":"error","metadata":{"type":"TypeError","value":"x is undefined"}}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Title, res.Message) // TypeError x is undefined
//
// The pure functions (GetTitle, GetMessage, GetLocation and friends) operate
// on already decoded records and never fail. A Resolver is safe for
// concurrent use.
package marquee
