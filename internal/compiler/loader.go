package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/distlab/internal/ir"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Dists     []ir.DistSpec
	GPs       []ir.GPSpec
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// Dist returns the distribution declared under name.
func (r *LoadResult) Dist(name string) (ir.DistSpec, bool) {
	for _, d := range r.Dists {
		if d.Name == name {
			return d, true
		}
	}
	return ir.DistSpec{}, false
}

// GP returns the Gaussian process declared under name.
func (r *LoadResult) GP(name string) (ir.GPSpec, bool) {
	for _, g := range r.GPs {
		if g.Name == name {
			return g, true
		}
	}
	return ir.GPSpec{}, false
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants for loading, shared by every command that reads specs.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
)

// LoadSpecs loads, compiles and validates CUE specs from a directory.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{CUEValue: value, FileCount: len(cueFiles)}
	errs := extract(value, result, mode)

	if len(result.Dists) == 0 && len(result.GPs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no dist or gp declarations found in specs"})
	}
	return result, errs
}

// extract compiles and validates every dist and gp declaration in value.
func extract(value cue.Value, result *LoadResult, mode LoadMode) []error {
	var errs []error
	stop := func(err error) bool {
		errs = append(errs, err)
		return mode == LoadModeFailFast
	}

	distsVal := value.LookupPath(cue.ParsePath("dist"))
	if distsVal.Exists() {
		iter, err := distsVal.Fields()
		if err != nil {
			if stop(&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating dists: %v", err)}) {
				return errs
			}
		} else {
			for iter.Next() {
				label := "dist." + iter.Selector().String()
				spec, err := CompileDist(iter.Value())
				if err != nil {
					if stop(convertCompileError(err, label)) {
						return errs
					}
					continue
				}
				if verrs := Validate(spec); len(verrs) > 0 {
					if stop(convertValidationError(verrs[0], label, iter.Value().Pos())) {
						return errs
					}
					for _, ve := range verrs[1:] {
						errs = append(errs, convertValidationError(ve, label, iter.Value().Pos()))
					}
					continue
				}
				result.Dists = append(result.Dists, *spec)
			}
		}
	}

	gpsVal := value.LookupPath(cue.ParsePath("gp"))
	if gpsVal.Exists() {
		iter, err := gpsVal.Fields()
		if err != nil {
			if stop(&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating gps: %v", err)}) {
				return errs
			}
		} else {
			for iter.Next() {
				label := "gp." + iter.Selector().String()
				spec, err := CompileGP(iter.Value())
				if err != nil {
					if stop(convertCompileError(err, label)) {
						return errs
					}
					continue
				}
				if verrs := Validate(spec); len(verrs) > 0 {
					if stop(convertValidationError(verrs[0], label, iter.Value().Pos())) {
						return errs
					}
					for _, ve := range verrs[1:] {
						errs = append(errs, convertValidationError(ve, label, iter.Value().Pos()))
					}
					continue
				}
				result.GPs = append(result.GPs, *spec)
			}
		}
	}

	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

func convertValidationError(ve ValidationError, context string, pos token.Pos) *LoadError {
	return &LoadError{
		Code:    ve.Code,
		Message: fmt.Sprintf("%s.%s: %s", context, ve.Field, ve.Message),
		Pos:     pos,
	}
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "family":
		return ErrUnknownFamily
	case "params":
		return ErrParameterDomain
	case "kernel":
		return ErrUnknownKernel
	case "alpha", "sigma", "jitter":
		return ErrInvalidHyper
	case "rho":
		return ErrLengthScaleArity
	default:
		if strings.HasPrefix(field, "params.") {
			return ErrParameterDomain
		}
		return ErrCodeGeneric
	}
}
