package typecheck

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
)

// TemplateExtension is the extension of template-language sources.
const TemplateExtension = ".vue"

// AmbientDeclarations declares the identifiers a template compiler injects
// into script blocks. Without them every component reports them as unknown.
const AmbientDeclarations = `declare function defineProps<T = any>(props?: any): T;
declare function defineEmits<T = any>(emits?: any): T;
declare function defineExpose(exposed?: Record<string, any>): void;
declare function defineSlots<T = any>(): T;
declare function defineModel<T = any>(name?: string, options?: any): T;
declare function withDefaults<T, D>(props: T, defaults: D): T & D;
declare const $event: any;
declare const $props: any;
declare const $emit: (event: string, ...args: any[]) => void;
`

var scriptBlock = regexp.MustCompile(`(?is)<script\b([^>]*)>(.*?)</script>`)

var typedLang = regexp.MustCompile(`(?i)\blang\s*=\s*["'](ts|tsx)["']`)

// CompanionName returns the synthesized typed source name for a template file.
func CompanionName(fileName string) string {
	return fileName + ".ts"
}

// ExtractScript returns the concatenated typed script blocks of a template
// source, and false when it has none.
func ExtractScript(src string) (string, bool) {
	var parts []string
	for _, m := range scriptBlock.FindAllStringSubmatch(src, -1) {
		if typedLang.MatchString(m[1]) {
			parts = append(parts, strings.TrimSpace(m[2]))
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}

// NewHost builds the ephemeral file set for one request and returns the name
// of the file to analyze. Template files are analyzed through their companion.
func NewHost(req domain.WorkerRequest) (*domain.AnalysisHost, string) {
	host := domain.NewAnalysisHost(req.FileName, req.Content, req.CompilerOptions)
	if filepath.Ext(req.FileName) != TemplateExtension {
		return host, req.FileName
	}

	companion := CompanionName(req.FileName)
	script, ok := ExtractScript(req.Content)
	if !ok {
		script = "export {};"
	}
	host.Add(companion, script)
	host.Add(domain.AmbientDeclarationsFile, AmbientDeclarations)
	return host, companion
}
