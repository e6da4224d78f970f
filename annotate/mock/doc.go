// Package mock provides test double implementations of the annotate interfaces.
//
// The mocks let tests run the full pipeline without Python or a chat
// model and give deterministic, controllable output.
//
// # Usage in Tests
//
//	// Default behavior: whitespace tokens tagged from a lexicon
//	backend := mock.NewMockBackend()
//	backend.Tags["cat"] = core.POSNoun
//
//	// Simulate a missing model that appears after acquisition
//	backend.SetMissing(core.LanguageSpanish, true)
//
//	// Custom behavior injection
//	backend.AnnotateFunc = func(ctx context.Context, lang core.Language, text string) ([]core.Token, error) {
//	    return tokens, nil
//	}
//
//	// Check call counts
//	loads := backend.LoadCount()
//
// # Default Behavior
//
//   - MockBackend: loads a MockModel for every language unless marked missing;
//     Acquire clears the missing mark
//   - MockModel: splits text on whitespace, tags words from the backend's
//     lexicon (POSOther when unknown) and leaves every head empty
package mock
