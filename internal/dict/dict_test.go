package dict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCIN2 = `%gen_inp
%ename Array30
%keyname begin
a	1-
%keyname end
%chardef begin
# comment inside block
abc	測
a	一
a	二

q	手
%chardef end
zz	外
`

const samplePhrases = `# array30 phrases
,,,/	燦爛
abcd	測試
abcd	策試
broken line without tab
	空碼
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyDictionary(t *testing.T) {
	d := New()
	chars, phrases := d.Stats()
	assert.Zero(t, chars)
	assert.Zero(t, phrases)
	assert.False(t, d.HasCode("test"))
	assert.Nil(t, d.LookupChars("abc"))
	assert.Nil(t, d.LookupPhrases("abc"))
}

func TestNilDictionaryLookups(t *testing.T) {
	var d *Dictionary
	assert.Nil(t, d.LookupChars("a"))
	assert.False(t, d.HasCode("a"))
}

func TestLoadCIN2OnlyReadsChardefBlock(t *testing.T) {
	d := New()
	require.NoError(t, d.LoadCIN2File(writeFile(t, "ar30.cin2", sampleCIN2)))

	assert.Equal(t, []string{"測"}, d.LookupChars("abc"))
	assert.Equal(t, []string{"一", "二"}, d.LookupChars("a"), "file order must be preserved")
	assert.Equal(t, []string{"手"}, d.LookupChars("q"))
	assert.Nil(t, d.LookupChars("zz"), "entries after %chardef end are ignored")
	chars, phrases := d.Stats()
	assert.Equal(t, 3, chars)
	assert.Zero(t, phrases)
}

func TestLoadPhraseFile(t *testing.T) {
	d := New()
	require.NoError(t, d.LoadPhraseFile(writeFile(t, "phrase.txt", samplePhrases)))

	assert.Equal(t, []string{"燦爛"}, d.LookupPhrases(",,,/"))
	assert.Equal(t, []string{"測試", "策試"}, d.LookupPhrases("abcd"))
	assert.Nil(t, d.LookupChars("abcd"), "phrases never land in the char table")
	_, phrases := d.Stats()
	assert.Equal(t, 2, phrases)
}

func TestLookupIsCaseSensitive(t *testing.T) {
	d := New()
	require.NoError(t, d.ReadPhrases(strings.NewReader("abcd\t測試\n")))
	assert.Nil(t, d.LookupPhrases("ABCD"))
}

func TestLoad(t *testing.T) {
	d, err := Load(writeFile(t, "p.txt", samplePhrases), writeFile(t, "c.cin2", sampleCIN2))
	require.NoError(t, err)
	assert.True(t, d.HasCode("abcd"))
	assert.True(t, d.HasCode("abc"))
}

func TestMissingFileIsUnavailable(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"), "also-missing.cin2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "tables.json", `{"chars": {"a": ["一", " ", "二"]}, "phrases": {"abcd": ["測試"], " ": ["x"]}}`)
	d := New()
	d.AddChar("a", "甲")
	require.NoError(t, d.LoadJSON(path))

	assert.Equal(t, []string{"甲", "一", "二"}, d.LookupChars("a"))
	assert.Equal(t, []string{"測試"}, d.LookupPhrases("abcd"))
	assert.False(t, d.HasCode(" "))
}

func TestLoadJSONRejectsGarbage(t *testing.T) {
	err := New().LoadJSON(writeFile(t, "bad.json", "{not json"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMerge(t *testing.T) {
	base := New()
	base.AddChar("a", "一")
	extra := New()
	extra.AddChar("a", "二")
	extra.AddPhrase("ab", "詞語")

	base.Merge(extra)
	base.Merge(nil)

	assert.Equal(t, []string{"一", "二"}, base.LookupChars("a"))
	assert.Equal(t, []string{"詞語"}, base.LookupPhrases("ab"))
}
