// Package filterexpr binds CEL-style filter and order_by expressions
// from list requests onto typed query-parameter structs. Filters are
// restricted to conjunctions of atomic comparisons over whitelisted
// fields; ordering is restricted to whitelisted keys. Anything outside
// the schema is rejected before it can reach SQL.
package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Msg exposes the raw filter and order_by inputs of a list request.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the kind of literal value a field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
)

// Op represents a supported comparison operation.
type Op string

const (
	OpEQ  Op = "=="
	OpGTE Op = ">="
	OpLTE Op = "<="
)

var celOpNames = map[string]Op{
	"_==_": OpEQ,
	"_>=_": OpGTE,
	"_<=_": OpLTE,
}

// FilterField maps a filter field to params-struct fields per allowed
// operation.
type FilterField struct {
	Kind ValueKind
	Ops  map[Op]string
}

// OrderSchema describes ordering defaults and whitelisted keys. Field
// values are the SQL expressions substituted for the keys.
type OrderSchema struct {
	Default     string
	DefaultDesc bool
	Fields      map[string]string
}

// ResourceSchema aggregates filtering and ordering rules for a resource.
type ResourceSchema struct {
	Filter map[string]FilterField
	Order  OrderSchema
}

// Bind parses the request filter & order_by and populates the query
// params struct accordingly. The params struct must carry PrimaryKey,
// PrimaryDesc, SecondaryKey and SecondaryDesc fields for ordering.
func Bind[M Msg, P any](msg M, binding *P, schema ResourceSchema) error {
	if binding == nil {
		return errors.New("binding must not be nil")
	}

	dest := reflect.ValueOf(binding).Elem()
	if dest.Kind() != reflect.Struct {
		return errors.New("binding must point to a struct")
	}

	if err := bindFilter(dest, msg.GetFilter(), schema.Filter); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if err := bindOrder(dest, msg.GetOrderBy(), schema.Order); err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	return nil
}

func bindFilter(dest reflect.Value, filter string, fields map[string]FilterField) error {
	if filter == "" {
		return nil
	}
	if len(fields) == 0 {
		return errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(fields)
	if err != nil {
		return err
	}

	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return fmt.Errorf("convert filter AST: %w", err)
	}

	for _, expr := range conjunctsOf(parsed.GetExpr()) {
		field, op, value, err := atomicPredicate(expr)
		if err != nil {
			return err
		}

		rule, ok := fields[field]
		if !ok {
			return fmt.Errorf("field %q is not allowed", field)
		}
		target, ok := rule.Ops[op]
		if !ok {
			return fmt.Errorf("operator %q is not allowed for field %q", string(op), field)
		}
		if err := checkKind(rule.Kind, value); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		if err := assign(dest, target, value); err != nil {
			return err
		}
	}
	return nil
}

func buildEnv(fields map[string]FilterField) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		var celType *cel.Type
		switch rule.Kind {
		case KindString:
			celType = cel.StringType
		case KindNumber:
			celType = cel.IntType
		case KindTimestamp:
			celType = cel.TimestampType
		default:
			return nil, fmt.Errorf("field %q: unknown kind %q", name, rule.Kind)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

// conjunctsOf flattens nested AND chains into a flat predicate list.
func conjunctsOf(expr *exprpb.Expr) []*exprpb.Expr {
	call := expr.GetCallExpr()
	if call != nil && call.GetFunction() == "_&&_" {
		var out []*exprpb.Expr
		for _, arg := range call.GetArgs() {
			out = append(out, conjunctsOf(arg)...)
		}
		return out
	}
	return []*exprpb.Expr{expr}
}

func atomicPredicate(expr *exprpb.Expr) (field string, op Op, value any, err error) {
	call := expr.GetCallExpr()
	if call == nil {
		return "", "", nil, errors.New("filter must be a conjunction of comparisons")
	}
	op, ok := celOpNames[call.GetFunction()]
	if !ok {
		return "", "", nil, fmt.Errorf("unsupported operator %q", call.GetFunction())
	}
	args := call.GetArgs()
	if len(args) != 2 {
		return "", "", nil, fmt.Errorf("operator %q expects two operands", call.GetFunction())
	}

	field = args[0].GetIdentExpr().GetName()
	if field == "" {
		return "", "", nil, errors.New("left operand must be a field name")
	}
	value, err = literalValue(args[1])
	if err != nil {
		return "", "", nil, fmt.Errorf("field %q: %w", field, err)
	}
	return field, op, value, nil
}

func literalValue(expr *exprpb.Expr) (any, error) {
	// timestamp("...") literals arrive as a call around a string.
	if call := expr.GetCallExpr(); call != nil && call.GetFunction() == "timestamp" {
		if len(call.GetArgs()) != 1 {
			return nil, errors.New("timestamp() expects one argument")
		}
		raw := call.GetArgs()[0].GetConstExpr().GetStringValue()
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q", raw)
		}
		return ts.UTC(), nil
	}

	c := expr.GetConstExpr()
	if c == nil {
		return nil, errors.New("right operand must be a literal")
	}
	switch v := c.GetConstantKind().(type) {
	case *exprpb.Constant_StringValue:
		return v.StringValue, nil
	case *exprpb.Constant_Int64Value:
		return v.Int64Value, nil
	case *exprpb.Constant_Uint64Value:
		return int64(v.Uint64Value), nil
	default:
		return nil, errors.New("unsupported literal type")
	}
}

func checkKind(kind ValueKind, value any) error {
	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return errors.New("expected a string literal")
		}
	case KindNumber:
		if _, ok := value.(int64); !ok {
			return errors.New("expected an integer literal")
		}
	case KindTimestamp:
		if _, ok := value.(time.Time); !ok {
			return errors.New("expected a timestamp() literal")
		}
	}
	return nil
}

func assign(dest reflect.Value, name string, value any) error {
	field := dest.FieldByName(name)
	if !field.IsValid() || !field.CanSet() {
		return fmt.Errorf("params struct %s has no settable field %q", dest.Type(), name)
	}

	val := reflect.ValueOf(value)
	switch {
	case val.Type().AssignableTo(field.Type()):
		field.Set(val)
	case val.Kind() == reflect.Int64 && field.CanInt():
		field.SetInt(val.Int())
	case val.Kind() == reflect.String && field.Kind() == reflect.String:
		field.SetString(val.String())
	default:
		return fmt.Errorf("cannot assign %T to field %q", value, name)
	}
	return nil
}
