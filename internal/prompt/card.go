package prompt

import "fmt"

// TranscribeInstruction is the fixed instruction sent with every vision call.
// Personal cards come back as plain field-by-field text; venues come back as
// a small JSON object whose keys carry the "venue" prefix, which is what the
// agent's branch detection keys on.
const TranscribeInstruction = `You are reading a photograph of either a personal business card or the front of a venue (shop, restaurant, office...).

If it is a personal business card, transcribe every field you can read: full name, organization, role, phone numbers, email addresses, postal address, website. Answer in plain text, one field per line.

If it is a venue rather than a personal card, answer ONLY with a JSON object of this shape:
{"venue_name": "<name on the storefront or flyer>", "venue_type": "<kind of business>"}

Do not invent data that is not visible in the image.`

// GenerationSystem primes the card-generation model.
const GenerationSystem = "you are an expert in vCard format"

// BuildCardPrompt asks the generation model to turn the settled context
// (raw transcription or enriched venue JSON) into a vCard 3.0 payload.
func BuildCardPrompt() string {
	return fmt.Sprintf(`Build a vCard 3.0 contact card from the information above.

Rules:
- Output must contain the literal markers %s and %s.
- Always include N and FN lines. Include TEL, EMAIL, ADR, ORG, TITLE and URL lines when the information is available.
- For a venue, use the venue title as the contact name and include its address, phone and website.
- Do not add fields you have no data for.`, "BEGIN:VCARD", "END:VCARD")
}
