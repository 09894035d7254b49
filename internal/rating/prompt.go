package rating

import "strings"

const promptHeader = `Anda adalah sistem klasifikasi musik Indonesia. Berdasarkan lirik dan judul lagu berikut, rekomendasikan rating yang paling sesuai dari kategori ini, diurutkan dari yang paling longgar hingga paling ketat: "SU", "13+", "17+", atau "21+".

- **SU (semua umur)**: Cocok untuk semua kalangan. Tidak ada kata-kata kotor, kekerasan, atau tema dewasa.
- **13+**: Cocok untuk remaja. Dapat berisi tema percintaan ringan, sedikit kata-kata kasar (non-eksplisit), atau nada sedih/emosional.
- **17+**: Cocok untuk remaja akhir dan dewasa. Dapat berisi tema dewasa yang lebih jelas, referensi seksual non-eksplisit, atau kekerasan.
- **21+**: Cocok untuk dewasa. Berisi konten seksual eksplisit, kekerasan ekstrem, atau penggunaan bahasa yang sangat vulgar.

Jika konten berada di perbatasan antara dua kategori, pilih kategori yang lebih tinggi (lebih ketat).

Analisis lirik dan judul di bawah ini:
Judul: {title}
Lirik: {lyric}

`

const promptWithReason = promptHeader + `Berikan respons Anda hanya sebagai satu objek JSON dengan properti 'rating' (string, salah satu dari "SU", "13+", "17+", "21+") dan 'reason' (string). Contoh: {"rating": "13+", "reason": "Lirik membahas tema percintaan."}
`

const promptWithoutReason = promptHeader + `Berikan respons Anda hanya sebagai satu objek JSON dengan properti 'rating' (string, salah satu dari "SU", "13+", "17+", "21+"). Jangan sertakan properti lain. Contoh: {"rating": "13+"}
`

// BuildPrompt renders the classification prompt. Title and lyric are
// substituted verbatim in a single pass, so placeholder-like text inside
// them is never expanded again.
func BuildPrompt(title, lyric string, includeReason bool) string {
	template := promptWithoutReason
	if includeReason {
		template = promptWithReason
	}
	return strings.NewReplacer("{title}", title, "{lyric}", lyric).Replace(template)
}
