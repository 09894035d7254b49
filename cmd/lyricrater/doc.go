// Command lyricrater labels song lyrics with Indonesian age ratings
// (SU, 13+, 17+, 21+) using a hosted language model.
//
// Usage:
//
//	lyricrater classify songs.csv --csv labeled.csv --xlsx labeled.xlsx
//	pbpaste | lyricrater classify - --provider deepseek
//	lyricrater prompt --title "Judul" --lyric "Lirik..." --reason
//	lyricrater check
//	lyricrater config init|validate|show
//
// Input must contain Title and Lyric columns. Output adds Predicted Rating and
// Reason columns. API keys are read from the config file or from
// GEMINI_API_KEY, DEEPSEEK_API_KEY, or ANTHROPIC_API_KEY.
package main
