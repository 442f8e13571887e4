package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// bindOrder parses "key [asc|desc], key2 [asc|desc]" against the
// whitelist and writes the resulting SQL expressions into the binding's
// PrimaryKey/PrimaryDesc/SecondaryKey/SecondaryDesc fields.
func bindOrder(dest reflect.Value, raw string, schema OrderSchema) error {
	if schema.Default == "" {
		return errors.New("order schema default key required")
	}
	defaultExpr, ok := schema.Fields[schema.Default]
	if !ok {
		return fmt.Errorf("default order key %q missing from schema fields", schema.Default)
	}

	type ordering struct {
		expr string
		desc bool
	}
	orders := []ordering{}

	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(strings.TrimSpace(seg))
		if len(parts) == 0 {
			continue
		}
		expr, ok := schema.Fields[parts[0]]
		if !ok {
			return fmt.Errorf("field %q cannot be used for ordering", parts[0])
		}
		desc := false
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return fmt.Errorf("invalid direction %q for field %q", parts[1], parts[0])
			}
		default:
			return fmt.Errorf("malformed order segment %q", seg)
		}
		orders = append(orders, ordering{expr: expr, desc: desc})
		if len(orders) == 2 {
			break
		}
	}

	if len(orders) == 0 {
		orders = append(orders, ordering{expr: defaultExpr, desc: schema.DefaultDesc})
	}

	if err := setOrderField(dest, "PrimaryKey", "PrimaryDesc", orders[0].expr, orders[0].desc); err != nil {
		return err
	}
	if len(orders) > 1 {
		return setOrderField(dest, "SecondaryKey", "SecondaryDesc", orders[1].expr, orders[1].desc)
	}
	return nil
}

func setOrderField(dest reflect.Value, keyName, descName, expr string, desc bool) error {
	key := dest.FieldByName(keyName)
	dir := dest.FieldByName(descName)
	if !key.IsValid() || !key.CanSet() || key.Kind() != reflect.String {
		return fmt.Errorf("params struct %s has no settable string field %q", dest.Type(), keyName)
	}
	if !dir.IsValid() || !dir.CanSet() || dir.Kind() != reflect.Bool {
		return fmt.Errorf("params struct %s has no settable bool field %q", dest.Type(), descName)
	}
	key.SetString(expr)
	dir.SetBool(desc)
	return nil
}
