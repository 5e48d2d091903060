package models

const (
	DefaultChunkSize      = 2500 // ~500 words at ~5 characters per word
	DefaultChunkOverlap   = 500
	DefaultTopK           = 4
	DefaultMapConcurrency = 4
	ContextSeparator      = "\n\n"
	OCRSuffix             = "_ocr.pdf"
)

var (
	// MapPromptTemplate is filled with the chunk text and the question
	MapPromptTemplate = `Use the following portion of a long document to see if any of the text is relevant to answer the question.
Return any relevant text verbatim.
%s
Question: %s
Relevant text, if any:`

	// ReducePromptTemplate is filled with the question and the joined map outputs
	ReducePromptTemplate = `Given the following extracted parts of a long document and a question, create a final answer.
If you don't know the answer, just say that you don't know. Don't try to make up an answer.

QUESTION: %s
=========
%s
=========
FINAL ANSWER:`

	// QuotePromptTemplate is filled with the question and the joined chunks
	QuotePromptTemplate = `
You are an academic assistant helping a researcher analyze a document.

The user has asked the following question:
"%s"

Below are extracted passages from the document. Your task is to select up to **three exact quotations** from these passages that directly answer or relate to the user's question.

Each quotation must be:
- Verbatim (copied exactly from the input text)
- Brief (1-3 sentences)
- Relevant to the user's query

Do not explain or paraphrase anything. Just return a list of quotes, one per line, optionally with a page number in parentheses if identifiable.

--- BEGIN TEXT ---
%s
--- END TEXT ---
`
)
