package types_test

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
)

func TestUploadFileRequestDecoding(t *testing.T) {
	cases := []struct {
		name string
		body string
		want types.UploadFileRequest
	}{
		{
			"well formed",
			`{"name":"a.png","type":"image","parentId":"p1","isPublic":true,"data":"eA=="}`,
			types.UploadFileRequest{Name: "a.png", Type: "image", ParentID: model.Ref("p1"), IsPublic: true, Data: "eA=="},
		},
		{
			"root parent",
			`{"name":"a","type":"folder","parentId":0}`,
			types.UploadFileRequest{Name: "a", Type: "folder", ParentID: model.Root()},
		},
		{
			"non-string fields keep their json text",
			`{"type":5,"data":{"k":1}}`,
			types.UploadFileRequest{Type: "5", Data: `{"k":1}`},
		},
		{
			"unknown parent shape stays a reference",
			`{"name":"a","parentId":[1]}`,
			types.UploadFileRequest{Name: "a", ParentID: model.Ref("[1]")},
		},
		{
			"null and non-bool values",
			`{"name":null,"isPublic":"yes"}`,
			types.UploadFileRequest{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got types.UploadFileRequest
			require.NoError(t, sonic.Unmarshal([]byte(tc.body), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUploadFileRequestRejectsNonObject(t *testing.T) {
	var got types.UploadFileRequest
	assert.Error(t, sonic.Unmarshal([]byte(`[1,2]`), &got))
	assert.Error(t, sonic.Unmarshal([]byte(`{not json`), &got))
}
