// internal/service/cart/infrastructure/rule/cel_rule_engine.go
package rule

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"storefront/internal/service/cart/domain"
)

// CELRuleAdapter 是 domain.AdmissionRule 的 CEL 实现。
// 规则表达式来自配置，在构造时编译一次，之后对每次加购求值。
// 这是典型的适配器模式：把第三方表达式引擎适配到我们自己的领域接口。
type CELRuleAdapter struct {
	program cel.Program
}

// NewCELRuleAdapter 编译规则表达式。表达式必须返回 bool。
// 可用变量: product_id, quantity, unit_price_cents。
func NewCELRuleAdapter(expression string) (*CELRuleAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("product_id", cel.IntType),
		cel.Variable("quantity", cel.IntType),
		cel.Variable("unit_price_cents", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile admission rule %q: %w", expression, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("admission rule %q must evaluate to bool", expression)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build CEL program: %w", err)
	}
	return &CELRuleAdapter{program: program}, nil
}

// Evaluate 实现 domain.AdmissionRule。
func (a *CELRuleAdapter) Evaluate(fact domain.Fact) (bool, error) {
	out, _, err := a.program.Eval(map[string]interface{}{
		"product_id":       fact.ProductID,
		"quantity":         fact.Quantity,
		"unit_price_cents": fact.UnitPriceCents,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate admission rule: %w", err)
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected result type from admission rule: %T", out.Value())
	}
	return allowed, nil
}
