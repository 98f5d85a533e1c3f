package extract

import (
	"testing"

	"github.com/loctree/loctree/pkg/types"
)

func TestSvelteScriptAndTemplate(t *testing.T) {
	ex := newTestExtractor(t, []string{"src/lib/store.ts", "src/Modal.svelte"})
	src := `<script lang="ts">
	import { counter } from "./lib/store";

	export function show() {}
	function handleClick() { counter.update(n => n + 1); }
</script>

<button on:click={handleClick}>open</button>
<div use:tooltip>{format(counter)}</div>
<Modal bind:this={modal} />
{#if visible}
	<p>hi</p>
{/if}
`
	fa := ex.Extract([]byte(src), "src/App.svelte", types.LangSvelte)

	if len(fa.Imports) != 1 || fa.Imports[0].ResolvedPath != "src/lib/store.ts" {
		t.Errorf("script import = %+v", fa.Imports)
	}
	var found bool
	for _, e := range fa.Exports {
		if e.Name == "show" && e.Kind == "function" {
			found = true
		}
	}
	if !found {
		t.Errorf("component API export lost: %+v", fa.Exports)
	}

	// Template references keep handlers, actions, and components alive.
	for _, want := range []string{"handleClick", "tooltip", "format", "Modal"} {
		if fa.LocalUses[want] == 0 {
			t.Errorf("template use %q missing: %+v", want, fa.LocalUses)
		}
	}
	// Control-flow keywords are not identifiers.
	if fa.LocalUses["if"] != 0 {
		t.Errorf("keyword leaked into local uses")
	}
}

func TestVueScriptAndTemplate(t *testing.T) {
	ex := newTestExtractor(t, nil)
	src := `<template>
  <UserCard @click="openProfile" />
  <input v-model="query" />
</template>

<script setup lang="ts">
import { ref } from "vue";
const query = ref("");
function openProfile() {}
</script>
`
	fa := ex.Extract([]byte(src), "src/Profile.vue", types.LangVue)

	if fa.LocalUses["openProfile"] == 0 || fa.LocalUses["UserCard"] == 0 || fa.LocalUses["query"] == 0 {
		t.Errorf("vue template uses = %+v", fa.LocalUses)
	}
	if len(fa.Imports) != 1 || fa.Imports[0].Source != "vue" {
		t.Errorf("vue script import = %+v", fa.Imports)
	}
}

func TestCSSLayersAndImports(t *testing.T) {
	ex := newTestExtractor(t, []string{"styles/base.css"})
	src := `@import "./base.css";

.modal {
	position: fixed;
	z-index: 100;
}

.plain {
	color: red;
}
`
	fa := ex.Extract([]byte(src), "styles/app.css", types.LangCSS)

	if len(fa.Imports) != 1 || fa.Imports[0].ResolvedPath != "styles/base.css" {
		t.Errorf("css import = %+v", fa.Imports)
	}
	if len(fa.CSSLayers) != 1 {
		t.Fatalf("css layers = %+v", fa.CSSLayers)
	}
	layer := fa.CSSLayers[0]
	if layer.Selector != ".modal" || layer.Position != "fixed" || layer.ZIndex != "100" {
		t.Errorf("layer = %+v", layer)
	}
}
