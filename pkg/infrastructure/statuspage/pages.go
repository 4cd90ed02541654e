package statuspage

import (
	"fmt"
	"strings"
)

// Curated service → status page table. Most of these run Statuspage.io
// and expose the JSON API; the rest fall back to HTML parsing.
var knownStatusPages = map[string]string{
	// Payment & finance
	"stripe": "https://status.stripe.com",
	"paypal": "https://www.paypal-status.com",
	"plaid":  "https://status.plaid.com",
	// Code & DevOps
	"github":    "https://www.githubstatus.com",
	"gitlab":    "https://status.gitlab.com",
	"bitbucket": "https://bitbucket.status.atlassian.com",
	"vercel":    "https://www.vercel-status.com",
	"netlify":   "https://www.netlifystatus.com",
	"heroku":    "https://status.heroku.com",
	"docker":    "https://status.docker.com",
	"dockerhub": "https://status.docker.com",
	"npm":       "https://status.npmjs.org",
	"pypi":      "https://status.python.org",
	"circleci":  "https://status.circleci.com",
	// AI & ML
	"openai":      "https://status.openai.com",
	"anthropic":   "https://status.anthropic.com",
	"gemini":      "https://status.cloud.google.com",
	"vertexai":    "https://status.cloud.google.com",
	"replicate":   "https://replicate.statuspage.io",
	"huggingface": "https://status.huggingface.co",
	"hf":          "https://status.huggingface.co",
	"cohere":      "https://status.cohere.com",
	"mistral":     "https://status.mistral.ai",
	"together":    "https://status.together.ai",
	"groq":        "https://status.groq.com",
	"perplexity":  "https://status.perplexity.ai",
	// Image / video AI
	"fal":        "https://fal.statuspage.io",
	"midjourney": "https://status.midjourney.com",
	"stability":  "https://status.stability.ai",
	"runway":     "https://status.runwayml.com",
	"leonardo":   "https://status.leonardo.ai",
	"ideogram":   "https://status.ideogram.ai",
	"bfl":        "https://status.bfl.ml",
	// Voice / audio AI
	"elevenlabs": "https://status.elevenlabs.io",
	"11labs":     "https://status.elevenlabs.io",
	"resemble":   "https://status.resemble.ai",
	"assemblyai": "https://status.assemblyai.com",
	"deepgram":   "https://status.deepgram.com",
	"heygen":     "https://status.heygen.com",
	"descript":   "https://status.descript.com",
	"luma":       "https://status.lumalabs.ai",
	"pika":       "https://status.pika.art",
	"sync":       "https://status.sync.so",
	// Cloud providers
	"aws":          "https://health.aws.amazon.com/health/status",
	"amazon":       "https://health.aws.amazon.com/health/status",
	"gcp":          "https://status.cloud.google.com",
	"googlecloud":  "https://status.cloud.google.com",
	"azure":        "https://status.azure.com",
	"microsoft":    "https://status.azure.com",
	"digitalocean": "https://status.digitalocean.com",
	"linode":       "https://status.linode.com",
	"vultr":        "https://status.vultr.com",
	"render":       "https://status.render.com",
	"railway":      "https://railway.instatus.com",
	"fly":          "https://status.fly.io",
	// Databases
	"mongodb":     "https://status.mongodb.com",
	"supabase":    "https://status.supabase.com",
	"planetscale": "https://www.planetscalestatus.com",
	"neon":        "https://neonstatus.com",
	"fauna":       "https://status.fauna.com",
	"redis":       "https://status.redis.com",
	"upstash":     "https://status.upstash.com",
	"cockroachdb": "https://status.cockroachlabs.cloud",
	// Communication
	"twilio":   "https://status.twilio.com",
	"sendgrid": "https://status.sendgrid.com",
	"mailgun":  "https://status.mailgun.com",
	"postmark": "https://status.postmarkapp.com",
	"slack":    "https://status.slack.com",
	"discord":  "https://discordstatus.com",
	"zoom":     "https://status.zoom.us",
	"intercom": "https://www.intercomstatus.com",
	// CDN & DNS
	"cloudflare": "https://www.cloudflarestatus.com",
	"fastly":     "https://status.fastly.com",
	// Auth & identity
	"auth0": "https://status.auth0.com",
	"okta":  "https://status.okta.com",
	"clerk": "https://status.clerk.com",
	// Analytics & monitoring
	"datadog":   "https://status.datadoghq.com",
	"newrelic":  "https://status.newrelic.com",
	"sentry":    "https://status.sentry.io",
	"mixpanel":  "https://status.mixpanel.com",
	"amplitude": "https://status.amplitude.com",
	"segment":   "https://status.segment.com",
	"posthog":   "https://status.posthog.com",
	// Other
	"notion":     "https://status.notion.so",
	"airtable":   "https://status.airtable.com",
	"figma":      "https://status.figma.com",
	"linear":     "https://linearstatus.com",
	"jira":       "https://jira-software.status.atlassian.com",
	"confluence": "https://confluence.status.atlassian.com",
	"atlassian":  "https://status.atlassian.com",
	"shopify":    "https://www.shopifystatus.com",
	"algolia":    "https://status.algolia.com",
	"pinecone":   "https://status.pinecone.io",
	"weaviate":   "https://status.weaviate.io",
	"qdrant":     "https://status.qdrant.io",
	"milvus":     "https://status.milvus.io",
}

// Phrase and synonym aliases resolved before the table lookup.
var serviceAliases = map[string]string{
	"claude":                "anthropic",
	"claude api":            "anthropic",
	"anthropic claude":      "anthropic",
	"anthropic claude api":  "anthropic",
	"gh":                    "github",
	"google cloud":          "gcp",
	"google cloud platform": "gcp",
	"vertex ai":             "vertexai",
	"google gemini":         "gemini",
	"google gemini api":     "gemini",
	"gemini api":            "gemini",
	"fal.ai":                "fal",
	"fal ai":                "fal",
	"black forest labs":     "bfl",
	"bfl flux":              "bfl",
	"flux":                  "bfl",
	"flux api":              "bfl",
	"sync.so":               "sync",
	"sync labs":             "sync",
	"eleven labs":           "elevenlabs",
	"stability ai":          "stability",
	"runway ml":             "runway",
	"leonardo ai":           "leonardo",
	"hugging face":          "huggingface",
	"together ai":           "together",
	"mistral ai":            "mistral",
	"perplexity ai":         "perplexity",
	"luma labs":             "luma",
	"fly.io":                "fly",
	"k8s":                   "kubernetes",
	"postgres":              "postgresql",
}

// Candidate URL shapes probed when a service is not in the table,
// in preference order.
var candidatePatterns = []string{
	"https://status.%s.com",
	"https://%s.statuspage.io",
	"https://%s.com/status",
	"https://status.%s.io",
	"https://health.%s.com",
}

var strippedSuffixes = []string{" api", " status", " service"}

// NormalizeServiceName resolves aliases and collapses a free-form
// service name to the table key form: lowercase, no spaces, dots, or
// dashes.
func NormalizeServiceName(service string) string {
	s := strings.ToLower(strings.TrimSpace(service))
	if canonical, ok := serviceAliases[s]; ok {
		return canonical
	}
	for _, suffix := range strippedSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".com")
	if canonical, ok := serviceAliases[s]; ok {
		return canonical
	}
	s = strings.NewReplacer(" ", "", ".", "", "-", "").Replace(s)
	if canonical, ok := serviceAliases[s]; ok {
		return canonical
	}
	return s
}

// FindStatusPage returns the curated status page for service, or
// candidate URLs to probe when the service is not in the table.
func FindStatusPage(service string) (base string, candidates []string) {
	normalized := NormalizeServiceName(service)
	if page, ok := knownStatusPages[normalized]; ok {
		return page, nil
	}

	candidates = make([]string, 0, len(candidatePatterns))
	for _, pattern := range candidatePatterns {
		candidates = append(candidates, fmt.Sprintf(pattern, normalized))
	}
	return "", candidates
}
