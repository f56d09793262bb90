package classify

import "strings"

// Categories is the fixed classification taxonomy. The classifier must not
// invent categories outside this list.
var Categories = []string{
	"Dining", "Groceries", "Utilities", "Transportation", "Shopping",
	"Entertainment", "Healthcare", "Salary", "Others",
}

// PaymentMethods is the fixed payment-method enumeration.
var PaymentMethods = []string{
	"UPI", "NEFT", "ACH", "CASH", "CHEQUE", "IMPS", "Not specified",
}

// CategoryFallback is assigned when nothing else matches with confidence.
const CategoryFallback = "Others"

// BuildPrompt constructs the classification prompt for one chunk of
// transaction blocks. The contract: one JSON object per block, fixed field
// set, category and payment-method enums, and a 0-100 confidence score.
func BuildPrompt(blocks []string) string {
	var b strings.Builder

	b.WriteString("You are a personal finance assistant. Extract structured JSON transactions from bank statement lines.\n\n")
	b.WriteString("Each transaction must contain:\n")
	b.WriteString("- date (YYYY-MM-DD)\n")
	b.WriteString("- title (merchant/source name)\n")
	b.WriteString("- amount (float)\n")
	b.WriteString("- type (\"credit\" or \"debit\")\n")
	b.WriteString("- category: one of [" + strings.Join(Categories, ", ") + "]\n")
	b.WriteString("- payment_method: one of [" + strings.Join(PaymentMethods, ", ") + "]\n")
	b.WriteString("- description: 3-5 word summary\n")
	b.WriteString("- confidence: integer from 0 to 100 (how confident you are in the category)\n\n")

	b.WriteString("Confidence Rules (0-100):\n")
	b.WriteString("- 95-100: strong category match from both title and amount clues\n")
	b.WriteString("- 85-94: title clearly maps to a category, even if amount doesn't align\n")
	b.WriteString("- 70-84: partial match (title or amount gives some clue, but not both)\n")
	b.WriteString("- 50-69: vague pattern or keyword, limited confidence\n")
	b.WriteString("- Below 50: highly uncertain, use category \"" + CategoryFallback + "\"\n\n")

	b.WriteString("Classification Rules:\n")
	b.WriteString("- 25,000-180,000 credit in the first 7 days of a month: category Salary\n")
	b.WriteString("- 500-1500 debit: category Transportation\n")
	b.WriteString("- 1000-2000 debit: category Utilities\n")
	b.WriteString("- amount < 100: category Others\n\n")

	b.WriteString("Keyword-based clues:\n")
	b.WriteString("- Dining: Zomato, Swiggy, restaurants, cafes, food courts, bars\n")
	b.WriteString("- Groceries: D-Mart, Reliance Fresh, Big Bazaar, JioMart, supermarkets\n")
	b.WriteString("- Shopping: Amazon, Flipkart, Myntra, Zudio, fashion brands\n")
	b.WriteString("- Entertainment: Netflix, Hotstar, PVR, BookMyShow, movie tickets\n")
	b.WriteString("- Healthcare: Apollo, Medlife, Practo, clinics, hospitals\n")
	b.WriteString("- Utilities: Airtel, Jio, DTH, broadband, gas, water bill, electricity\n")
	b.WriteString("- UPI with an unknown or ALL-CAPS personal name is likely a peer transfer: category Others unless other clues apply\n\n")

	b.WriteString("Only assign \"" + CategoryFallback + "\" if the transaction clearly matches no other category.\n\n")
	b.WriteString("Return output as a JSON array of transactions only. No explanation, no markdown, no labels.\n\n")
	b.WriteString("Now extract all transactions below and respond with a JSON array only:\n")
	b.WriteString(strings.Join(blocks, "\n"))

	return b.String()
}
