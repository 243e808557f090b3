// File: internal/orchestrator/mocks_test.go
package orchestrator

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/webpilot-ai/webpilot/api/schemas"
)

// -- Interpreter Mock --

// MockInterpreter mocks the schemas.Interpreter interface.
type MockInterpreter struct {
	mock.Mock
}

// Interpret mocks the plan interpretation call.
func (m *MockInterpreter) Interpret(ctx context.Context, userPrompt string) (*schemas.InterpretationPlan, error) {
	args := m.Called(ctx, userPrompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.InterpretationPlan), args.Error(1)
}

// -- Action Client Mock --

// MockActionClient mocks the schemas.ActionClient interface.
type MockActionClient struct {
	mock.Mock
}

func (m *MockActionClient) outcome(args mock.Arguments) schemas.ActionOutcome {
	if args.Get(0) == nil {
		return schemas.ActionOutcome{}
	}
	return args.Get(0).(schemas.ActionOutcome)
}

func (m *MockActionClient) Send(ctx context.Context, method string, params map[string]any) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, method, params))
}

func (m *MockActionClient) Navigate(ctx context.Context, url string) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, url))
}

func (m *MockActionClient) Click(ctx context.Context, selector string, timeoutMs int) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, selector, timeoutMs))
}

func (m *MockActionClient) TypeText(ctx context.Context, selector, text string) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, selector, text))
}

func (m *MockActionClient) GetText(ctx context.Context, selector string) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, selector))
}

func (m *MockActionClient) WaitForElement(ctx context.Context, selector string, timeoutMs int) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, selector, timeoutMs))
}

func (m *MockActionClient) WaitForNavigation(ctx context.Context, timeoutMs int) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, timeoutMs))
}

func (m *MockActionClient) WaitForSearchResults(ctx context.Context, timeoutMs int) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, timeoutMs))
}

func (m *MockActionClient) SmartWait(ctx context.Context, timeoutMs int) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, timeoutMs))
}

func (m *MockActionClient) PressKey(ctx context.Context, key string) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, key))
}

func (m *MockActionClient) TakeScreenshot(ctx context.Context, path string) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx, path))
}

func (m *MockActionClient) DebugPage(ctx context.Context) schemas.ActionOutcome {
	return m.outcome(m.Called(ctx))
}

func (m *MockActionClient) Close() {
	m.Called()
}
