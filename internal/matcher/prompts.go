package matcher

// CategorySystemPrompt is the system prompt for category selection.
const CategorySystemPrompt = `You are an expert at routing questions to Polymarket prediction market categories. Given a user's question and the list of available categories, pick the categories most likely to contain directly relevant markets.

Rules:
1. Only pick categories from the provided list, exactly as written
2. Pick the fewest categories that plausibly cover the question
3. If no category plausibly fits, return an empty list rather than guessing`

// CategoryPrompt is the user prompt template for category selection.
const CategoryPrompt = `Which categories might contain markets relevant to this question?

QUESTION: %s

AVAILABLE CATEGORIES: %s

Pick at most %d categories from the list above.

Respond with JSON:
{
  "categories": ["Category1", "Category2"],
  "reasoning": "brief explanation"
}`

// ScoringSystemPrompt is the system prompt for batch relevance scoring.
const ScoringSystemPrompt = `You are an expert at judging whether prediction markets answer a user's question. Score each market's relevance with a tier, not a number:

- HIGH: the market directly addresses the question's subject, including any named entities, price targets, or dates
- MEDIUM: the market is about the same topic but differs in a material detail (different threshold, timeframe, or entity)
- LOW: the market only shares keywords or is unrelated

Judge each market independently. Do not reward markets for being popular or interesting; only for answering the question.`

// ScoringPrompt is the user prompt template for batch relevance scoring.
// Every listed market must receive exactly one score entry.
const ScoringPrompt = `Score each market's relevance to this question.

QUESTION: %s
TODAY: %s

MARKETS:
%s

Respond with JSON containing one entry per market, using the market's number as its index:
{
  "scores": [
    {"index": 1, "tier": "HIGH", "reason": "brief explanation"}
  ]
}`
