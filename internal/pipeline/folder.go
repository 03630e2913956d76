package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"mssprep/internal"
	"mssprep/internal/util"
)

type prefixRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// prefixRules are tried in order and only the first match is applied.
var prefixRules = []prefixRule{
	{name: "ms oversize", pattern: regexp.MustCompile(`(?i)^ms\.?\s*oversize\s*`), replacement: "msoversize"},
	{name: "ms coll", pattern: regexp.MustCompile(`(?i)^ms\.?\s*coll\.\s*`), replacement: "mscoll"},
	{name: "misc mss", pattern: regexp.MustCompile(`(?i)^misc\s*mss\s*`), replacement: "miscmss"},
	{name: "ljs", pattern: regexp.MustCompile(`(?i)^ljs\s*`), replacement: "ljs"},
	// Checked before "ms codex" so oversize codices keep their own prefix.
	{name: "oversize ms codex", pattern: regexp.MustCompile(`(?i)^oversize ms\.?\s*codex\s*`), replacement: "oversize_mscodex"},
	{name: "ms codex", pattern: regexp.MustCompile(`(?i)^ms\.?\s*codex\s*`), replacement: "mscodex"},
	{name: "cajs rar ms", pattern: regexp.MustCompile(`(?i)^cajs\s*rar\s*ms\s+`), replacement: "cajs_rarms"},
	// Loose: anything up to the first "ms roll" is dropped, so it goes last.
	{name: "ms roll", pattern: regexp.MustCompile(`(?i)^.*ms\.?\s*roll\s*`), replacement: "msroll"},
}

var (
	reFolderWord = regexp.MustCompile(`(?i)folders?\s*`)
	reItemWord   = regexp.MustCompile(`(?i)item\s*`)
	rePeriods    = regexp.MustCompile(`\.`)
	reSeparators = regexp.MustCompile(`[-\s/]+`)
	reNonWord    = regexp.MustCompile(`\W`)
)

// rewritePrefix applies the first matching prefix rule to an already
// lowercased and trimmed shelfmark.
func rewritePrefix(prepped string) string {
	for _, rule := range prefixRules {
		if loc := rule.pattern.FindStringIndex(prepped); loc != nil {
			return rule.replacement + prepped[loc[1]:]
		}
	}
	return prepped
}

// NormalizeFolder applies the substitutions shared by every folder name.
func NormalizeFolder(folder string) string {
	s := strings.TrimSpace(strings.ToLower(folder))
	s = replaceFirst(reFolderWord, s, "f")
	s = replaceFirst(reItemWord, s, "item")
	s = rePeriods.ReplaceAllLiteralString(s, "")
	s = reSeparators.ReplaceAllLiteralString(s, "_")
	s = util.StripDiacritics(s)
	return reNonWord.ReplaceAllLiteralString(s, "")
}

// BaseFolderName is the folder token for shelfmark before any
// disambiguating suffix.
func BaseFolderName(shelfmark string) string {
	prepped := strings.TrimSpace(strings.ToLower(shelfmark))
	return NormalizeFolder(rewritePrefix(prepped))
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// FolderNamer assigns folder tokens and tracks which bibids produced each
// token over one run.
type FolderNamer struct {
	bibIDsByFolder map[string][]string
	folderOrder    []string
	seenBibIDs     map[string]struct{}
	diagnostics    []internal.Diagnostic
}

func NewFolderNamer() *FolderNamer {
	return &FolderNamer{
		bibIDsByFolder: map[string][]string{},
		seenBibIDs:     map[string]struct{}{},
	}
}

// FolderName returns the folder token for shelfmark. When shelfmark equals
// lastUsedShelfmark, the shelfmark of the previously emitted row, "_"+bibid
// is appended. Bookkeeping always uses the token without the suffix.
func (n *FolderNamer) FolderName(shelfmark, bibid, lastUsedShelfmark string) string {
	folder := BaseFolderName(shelfmark)

	n.checkFolder(folder, bibid)
	n.checkBibID(bibid)

	if shelfmark != lastUsedShelfmark {
		return folder
	}
	return folder + "_" + bibid
}

func (n *FolderNamer) checkFolder(folder, bibid string) {
	previous, ok := n.bibIDsByFolder[folder]
	if ok && len(previous) > 0 {
		n.diagnostics = append(n.diagnostics, internal.Diagnostic{
			Kind:    internal.DiagDuplicateFolder,
			Folder:  folder,
			BibID:   bibid,
			BibIDs:  append([]string(nil), previous...),
			Message: fmt.Sprintf("duplicate folder: '%s'; bibid: '%s': previous: %s", folder, bibid, strings.Join(previous, ", ")),
		})
	}
	if !ok {
		n.folderOrder = append(n.folderOrder, folder)
	}
	n.bibIDsByFolder[folder] = append(previous, bibid)
}

func (n *FolderNamer) checkBibID(bibid string) {
	if _, ok := n.seenBibIDs[bibid]; ok {
		n.diagnostics = append(n.diagnostics, internal.Diagnostic{
			Kind:    internal.DiagDuplicateBibID,
			BibID:   bibid,
			Message: fmt.Sprintf("duplicate bibid: '%s'", bibid),
		})
		return
	}
	n.seenBibIDs[bibid] = struct{}{}
}

// Diagnostics returns the warnings raised so far, in order.
func (n *FolderNamer) Diagnostics() []internal.Diagnostic {
	return append([]internal.Diagnostic(nil), n.diagnostics...)
}

// BibIDs returns the bibids recorded for folder.
func (n *FolderNamer) BibIDs(folder string) []string {
	return append([]string(nil), n.bibIDsByFolder[folder]...)
}

// Summary lists every folder used by more than one bibid, in first-seen order.
func (n *FolderNamer) Summary() []internal.Diagnostic {
	var out []internal.Diagnostic
	for _, folder := range n.folderOrder {
		bibids := n.bibIDsByFolder[folder]
		if len(bibids) < 2 {
			continue
		}
		out = append(out, internal.Diagnostic{
			Kind:    internal.DiagSharedFolder,
			Folder:  folder,
			BibIDs:  append([]string(nil), bibids...),
			Message: strings.Join(bibids, "|"),
		})
	}
	return out
}
