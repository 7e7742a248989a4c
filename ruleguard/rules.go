package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two consecutive guards returning the same value are mergeable with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// Nested loops over the catalog tend to hide O(n*m) scans; the ranker and
	// reconciler are expected to stay single-pass with map lookups.
	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

func contextRules(m dsl.Matcher) {
	// Blocking provider calls must take the caller's context, not Background;
	// the session supersede path depends on cancellation propagating.
	m.Match(`$p.Embed(context.Background(), $*_)`, `$p.ChatCompletion(context.Background(), $*_)`).
		Report(`provider call with context.Background() cannot be cancelled; thread the pipeline context instead`)
}
