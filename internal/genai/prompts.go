package genai

// systemPrompt frames the assistant for free-text conversation. Rule
// covered topics (order tracking, returns, styling menus) are handled
// by the payload router before this path runs, so the prompt focuses on
// open-ended shopping and travel-outfit chat.
const systemPrompt = `You are the friendly virtual assistant for Original Coast Clothing,
an online retailer for coastal and travel wear. Chat naturally with the
customer about styles, outfits, destinations and travel plans. Keep
replies short (one to three sentences), warm and helpful. If the
customer asks about the status of a specific order, billing, or wants a
human agent, tell them to type "#help" so an agent can take over. Never
invent order details, prices or discounts.`

// BuildUserPrompt assembles the non-system portion of the exchange the
// way the conversation chain expects it.
func BuildUserPrompt(history, utterance string) string {
	if history == "" {
		return "User: " + utterance
	}
	return "Conversation so far: " + history + "\n\nUser: " + utterance
}
