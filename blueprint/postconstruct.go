package blueprint

// PostConstruct applies mungers, then validators, to a fully-evaluated
// value tree. Traversal is post-order: a nested record's own mungers and
// validators complete before the mungers and validators declared on the
// field that holds it, in schema declaration order throughout (spec §4.8,
// §9). Every validator runs regardless of earlier failures; rejections
// are aggregated into a single [ValidationError].
func PostConstruct(schema *Schema, value any) (any, error) {
	var errs []FieldError

	result := applyPost(RootPath, schema, value, &errs)

	if len(errs) > 0 {
		return result, &ValidationError{Errors: errs}
	}

	return result, nil
}

func applyPost(path Path, schema *Schema, value any, errs *[]FieldError) any {
	if schema == nil {
		return value
	}

	switch schema.Shape {
	case ShapeRecord:
		return applyPostRecord(path, schema, value, errs)
	case ShapeList:
		return applyPostList(path, schema, value, errs)
	case ShapeTuple:
		return applyPostTuple(path, schema, value, errs)
	case ShapeMapSchema:
		return applyPostMapSchema(path, schema, value, errs)
	default:
		return value
	}
}

func applyPostRecord(path Path, schema *Schema, value any, errs *[]FieldError) any {
	rec, ok := value.(map[string]any)
	if !ok {
		return value
	}

	for _, f := range schema.Fields {
		fieldPath := path.Child(f.Name)
		fv := rec[f.Name]

		if f.Nested != nil {
			fv = applyPost(fieldPath, f.Nested, fv, errs)
		}

		for _, m := range f.Mungers {
			nv, err := m(fv, rec)
			if err != nil {
				*errs = append(*errs, FieldError{Path: fieldPath, Message: err.Error()})

				continue
			}

			fv = nv
		}

		rec[f.Name] = fv

		for _, v := range f.Validators {
			if err := v(fv); err != nil {
				*errs = append(*errs, FieldError{Path: fieldPath, Message: err.Error()})
			}
		}
	}

	for _, rv := range schema.RecordValidators {
		if err := rv(rec); err != nil {
			*errs = append(*errs, FieldError{Path: path, Message: err.Error()})
		}
	}

	return rec
}

func applyPostList(path Path, schema *Schema, value any, errs *[]FieldError) any {
	list, ok := value.([]any)
	if !ok || schema.ElemSchema == nil {
		return value
	}

	for i, el := range list {
		list[i] = applyPost(path.ChildIndex(i), schema.ElemSchema, el, errs)
	}

	return list
}

func applyPostTuple(path Path, schema *Schema, value any, errs *[]FieldError) any {
	tup, ok := value.([]any)
	if !ok {
		return value
	}

	for i, el := range tup {
		if i < len(schema.TupleSchemas) && schema.TupleSchemas[i] != nil {
			tup[i] = applyPost(path.ChildIndex(i), schema.TupleSchemas[i], el, errs)
		}
	}

	return tup
}

func applyPostMapSchema(path Path, schema *Schema, value any, errs *[]FieldError) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}

	for k, mk := range schema.MapKeys {
		if mk.Nested == nil {
			continue
		}

		if v, present := m[k]; present {
			m[k] = applyPost(path.Child(k), mk.Nested, v, errs)
		}
	}

	return m
}
