package textproc

import "strings"

// CompositeTerms are multi-word phrases indexed as single tokens. The first
// block is regulatory vocabulary, the second is web-page chrome. Order matters,
// see CollapseCompositeTerms.
var CompositeTerms = []string{
	"market abuse", "payment system", "anti money laundering", "know your customer",
	"capital requirement", "financial service", "banking law", "securities regulation",
	"corporate governance", "fiduciary duty", "disclosure requirements", "risk management",
	"financial stability", "consumer protection", "data protection", "financial crime",
	"fraud prevention", "insider trading", "conflict of interest", "reporting obligation",
	"whistleblower protection", "ethical standards", "financial oversight", "investment guideline",
	"tax law", "fiscal policy", "monetary policy", "currency regulation", "exchange control",
	"credit regulation", "insurance regulation", "pension regulation", "financial instrument",
	"financial market infrastructure", "clearing and settlement", "digital currency",
	"blockchain", "cryptocurrency", "initial coin offering", "electronic money", "payment service",
	"crowdfunding", "peer to peer lending", "robo advisory", "virtual asset", "financial innovation",

	"user interface", "user experience", "hamburger menu", "footer menu", "social media links",
	"privacy policy", "terms of use", "disclaimer", "FAQ", "frequently asked questions", "search bar",
	"login form", "sign up", "account settings", "site map", "accessibility", "mobile menu",
	"responsive design", "click here", "more info", "gallery", "portfolio", "legal notice",
	"back to top", "scroll to", "navigation bar", "menu item", "site navigation", "page layout",
	"web development", "web design", "web service", "secure connection", "domain name",
	"web hosting", "cloud hosting", "content management system",
}

// CollapseCompositeTerms rewrites every occurrence of each phrase into a single
// token by removing its spaces. Phrases are applied one after another with
// exact, case-sensitive matching, so a phrase collapsed earlier can change what
// a later phrase matches. Callers that need reproducible output must keep the
// phrase order stable.
//
// It runs on raw text, before Preprocess.
func CollapseCompositeTerms(text string, phrases []string) string {
	for _, phrase := range phrases {
		joined := strings.ReplaceAll(phrase, " ", "")
		if joined == phrase {
			continue
		}
		text = strings.ReplaceAll(text, phrase, joined)
	}
	return text
}
