// Package validator collects and reports the outcome of compiling schemas
// and checking documents against them.
//
// rx check and rx lint fill a [Result] with one [Issue] per failing
// document or schema, then hand it to a [Reporter]:
//
//	result := &validator.Result{}
//	for i, doc := range docs {
//		result.Checked++
//		if !v.Check(doc) {
//			result.AddError(path, fmt.Sprintf("document %d", i+1), "does not match schema", doc)
//		}
//	}
//	_ = validator.NewReporter(os.Stdout, validator.FormatGitHub).Report(result)
package validator
