// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package annotate

import "errors"

var (
	// ErrBackendRequired indicates a nil Backend was passed to NewRegistry.
	ErrBackendRequired = errors.New("annotation backend is required")

	// ErrRegistryRequired indicates a nil Registry was passed to NewAnnotator.
	ErrRegistryRequired = errors.New("model registry is required")

	// ErrRegistryClosed indicates the registry was used after Close.
	ErrRegistryClosed = errors.New("model registry is closed")

	// ErrModelMissing indicates a model is not installed.
	// The registry reacts to it with one acquisition attempt.
	ErrModelMissing = errors.New("language model not installed")

	// ErrAcquireUnsupported indicates the backend cannot install models.
	ErrAcquireUnsupported = errors.New("model acquisition not supported by backend")

	// ErrAnnotationFailed indicates a loaded model failed to annotate text.
	ErrAnnotationFailed = errors.New("annotation failed")

	// ErrInvalidMaxAttempts indicates a retry helper was given a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
