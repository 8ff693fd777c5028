// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package crud

import (
	"encoding/json"
	"fmt"
	"strings"

	"atelier/internal/apiclient"
	"atelier/internal/models"
)

// BuildPayload turns a validated form into a request body. Without uploads
// the body is JSON; with uploads it is multipart and set-valued fields are
// sent as JSON-encoded arrays. On create, empty optional fields are left
// out so the server applies its own defaults. On update they are sent
// empty so a cleared field is cleared remotely.
func (s *Schema[T]) BuildPayload(f *Form, creating bool) (apiclient.Payload, error) {
	if !f.HasFiles() {
		body := map[string]any{}
		for _, fd := range s.EditableFields() {
			if fd.Multi() {
				set := models.NormalizeSet(f.Values[fd.Name])
				if len(set) == 0 && creating {
					continue
				}
				if set == nil {
					set = []string{}
				}
				body[fd.Name] = set
				continue
			}
			v := strings.TrimSpace(f.Get(fd.Name))
			if v == "" && creating {
				continue
			}
			body[fd.Name] = v
		}
		return apiclient.JSON(body), nil
	}

	mp := apiclient.NewMultipart()
	for _, fd := range s.EditableFields() {
		if fd.Multi() {
			set := models.NormalizeSet(f.Values[fd.Name])
			if len(set) == 0 && creating {
				continue
			}
			if set == nil {
				set = []string{}
			}
			enc, err := json.Marshal(set)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", fd.Name, err)
			}
			mp.AddField(fd.Name, string(enc))
			continue
		}
		v := strings.TrimSpace(f.Get(fd.Name))
		if v == "" && creating {
			continue
		}
		mp.AddField(fd.Name, v)
	}
	for _, name := range f.fileNames() {
		for _, u := range f.Files[name] {
			mp.AddFile(apiclient.File{
				Field:       name,
				Filename:    u.Filename,
				ContentType: u.MediaType(),
				Data:        u.Data,
			})
		}
	}
	return mp, nil
}
