package ime

// Candidate is one dictionary match for the current code.
type Candidate struct {
	Text     string
	Code     string
	IsPhrase bool
}

func charCandidate(text, code string) Candidate {
	return Candidate{Text: text, Code: code}
}

func phraseCandidate(text, code string) Candidate {
	return Candidate{Text: text, Code: code, IsPhrase: true}
}
