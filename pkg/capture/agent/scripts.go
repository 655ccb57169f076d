package agent

// InjectScript installs the in-page agent. The agent executes
// navigation strategies inside the document's own execution context and
// answers the orchestrator's protocol requests. Evaluating it is
// idempotent: an already-installed agent is left in place.
const InjectScript = `(() => {
  if (window.__deckshotAgent) { return true; }

  const settle = (ms) => new Promise((r) => setTimeout(r, ms));

  const visible = (el) => {
    if (!el || el.disabled) return false;
    const rect = el.getBoundingClientRect();
    if (rect.width === 0 || rect.height === 0) return false;
    const style = window.getComputedStyle(el);
    return style.visibility !== 'hidden' && style.display !== 'none';
  };

  const firstVisible = (selectors) => {
    for (const sel of selectors || []) {
      let found = null;
      try { found = document.querySelectorAll(sel); } catch (e) { continue; }
      for (const el of found) {
        if (visible(el)) return el;
      }
    }
    return null;
  };

  const pressKey = (key) => {
    const codes = { 'ArrowRight': 39, 'ArrowDown': 40, ' ': 32, 'PageDown': 34, 'n': 78 };
    const init = {
      key: key,
      code: key === ' ' ? 'Space' : key,
      keyCode: codes[key] || 0,
      which: codes[key] || 0,
      bubbles: true,
      cancelable: true,
    };
    const target = document.activeElement || document.body;
    target.dispatchEvent(new KeyboardEvent('keydown', init));
    target.dispatchEvent(new KeyboardEvent('keyup', init));
  };

  const clickCenter = (el) => {
    const rect = el.getBoundingClientRect();
    const x = rect.left + rect.width / 2;
    const y = rect.top + rect.height / 2;
    for (const type of ['pointerdown', 'mousedown', 'pointerup', 'mouseup', 'click']) {
      el.dispatchEvent(new MouseEvent(type, {
        bubbles: true, cancelable: true, clientX: x, clientY: y, view: window,
      }));
    }
  };

  const scroller = (sel) => {
    if (sel) {
      const el = firstVisible(sel.split(',').map((s) => s.trim()));
      if (el) return el;
    }
    return document.scrollingElement || document.documentElement;
  };

  const scrollTop = (sc) => sc.scrollTop;

  // Each strategy returns true when it acted on an available target,
  // false when its target was absent. Motion verification happens in
  // the runner.
  const strategies = {
    next_button: async (p) => {
      const el = firstVisible(p.nextSelectors);
      if (!el) return false;
      clickCenter(el);
      await settle(600);
      return true;
    },

    key_sequence: async (p) => {
      if (!p.keys || p.keys.length === 0) return false;
      for (const key of p.keys) {
        pressKey(key);
        await settle(350);
      }
      return true;
    },

    content_click: async (p) => {
      const el = firstVisible((p.contentSelector || 'body').split(',').map((s) => s.trim()));
      if (!el) return false;
      clickCenter(el);
      await settle(500);
      return true;
    },

    global_hook: async (p) => {
      for (const name of p.hookNames || []) {
        if (typeof window[name] === 'function') {
          try { window[name](); } catch (e) { continue; }
          await settle(600);
          return true;
        }
      }
      return false;
    },

    gesture: async (p) => {
      const el = firstVisible((p.contentSelector || 'body').split(',').map((s) => s.trim()));
      if (!el || typeof TouchEvent !== 'function') return false;
      const rect = el.getBoundingClientRect();
      const y = rect.top + rect.height / 2;
      const from = { clientX: rect.right - 20, clientY: y };
      const to = { clientX: rect.left + 20, clientY: y };
      const touch = (type, pos) => {
        let t;
        try {
          t = new Touch({ identifier: 1, target: el, ...pos });
        } catch (e) { return false; }
        el.dispatchEvent(new TouchEvent(type, {
          bubbles: true, cancelable: true,
          touches: type === 'touchend' ? [] : [t],
          changedTouches: [t],
        }));
        return true;
      };
      if (!touch('touchstart', from)) return false;
      touch('touchmove', to);
      touch('touchend', to);
      await settle(600);
      return true;
    },

    smart_scroll: async (p) => {
      const sc = scroller(p.scrollContainer);
      const before = scrollTop(sc);
      const root = sc === document.documentElement || sc === document.body ? document : sc;
      const blocks = root.querySelectorAll('h1, h2, h3, section, hr, [data-block-id]');
      let next = null;
      for (const el of blocks) {
        const top = el.getBoundingClientRect().top + before;
        if (top > before + 40) { next = top; break; }
      }
      if (next === null) return false;
      sc.scrollTo({ top: next, behavior: 'instant' });
      await settle(800);
      return scrollTop(sc) !== before;
    },

    percent_scroll: async (p) => {
      const sc = scroller(p.scrollContainer);
      const before = scrollTop(sc);
      sc.scrollBy ? sc.scrollBy(0, Math.floor(window.innerHeight * 0.85))
                  : sc.scrollTo({ top: before + Math.floor(window.innerHeight * 0.85) });
      await settle(800);
      return scrollTop(sc) !== before;
    },

    raw_scroll: async (p) => {
      const sc = scroller(p.scrollContainer);
      const before = scrollTop(sc);
      sc.scrollTop = before + 600;
      await settle(800);
      return scrollTop(sc) !== before;
    },

    url_param: async (p) => {
      const url = new URL(location.href);
      for (const name of p.urlParams || []) {
        const current = url.searchParams.get(name);
        if (current === null || !/^\d+$/.test(current)) continue;
        url.searchParams.set(name, String(parseInt(current, 10) + 1));
        location.href = url.toString();
        await settle(1200);
        return true;
      }
      return false;
    },
  };

  const nextSlide = async (p) => {
    for (const id of p.strategies || []) {
      const run = strategies[id];
      if (!run) continue;
      const before = location.href;
      let acted = false;
      try { acted = await run(p); } catch (e) { acted = false; }
      if (!acted) continue;
      if (p.addressVerified && location.href === before) continue;
      return { moved: true, method: id };
    }
    return { moved: false, method: '' };
  };

  const prepare = async () => {
    try {
      window.scrollTo(0, 0);
      const sel = window.getSelection();
      if (sel) sel.removeAllRanges();
      if (document.activeElement && document.activeElement.blur) {
        document.activeElement.blur();
      }
      return { success: true };
    } catch (e) {
      return { success: false };
    }
  };

  const unlock = async (creds) => {
    creds = creds || {};
    let attempted = false;
    const email = document.querySelector('input[type=email], input[name*=email i]');
    if (email && creds.email) {
      email.value = creds.email;
      email.dispatchEvent(new Event('input', { bubbles: true }));
      attempted = true;
    }
    const pass = document.querySelector('input[type=password], input[name*=passcode i]');
    if (pass && creds.passcode) {
      pass.value = creds.passcode;
      pass.dispatchEvent(new Event('input', { bubbles: true }));
      attempted = true;
    }
    if (attempted) {
      const submit = firstVisible(['button[type=submit]', 'input[type=submit]', 'form button']);
      if (submit) clickCenter(submit);
      await settle(1500);
    }
    return { attempted: attempted };
  };

  const pageInfo = () => {
    const affordance = firstVisible([
      "button[aria-label*='next' i]", "[data-testid*='next']", "a[rel='next']",
    ]) !== null;
    let units = 0;
    const counters = document.querySelectorAll(
      "[class*='page-number'], [class*='slide-count'], [class*='page-indicator'], [aria-label*='slide' i]");
    for (const el of counters) {
      const m = (el.textContent || '').match(/(?:\/|of)\s*(\d+)/i);
      if (m) { units = parseInt(m[1], 10); break; }
    }
    return {
      platformGuess: location.hostname,
      hasNavigationAffordance: affordance,
      estimatedUnitCount: units,
    };
  };

  window.__deckshotAgent = {
    handle: async (req) => {
      let out;
      switch (req.op) {
        case 'PING':          out = { alive: true }; break;
        case 'PREPARE':       out = await prepare(); break;
        case 'NEXT_SLIDE':    out = await nextSlide(req.payload || {}); break;
        case 'UNLOCK':        out = await unlock((req.payload || {}).credentials); break;
        case 'GET_PAGE_INFO': out = pageInfo(); break;
        default:              out = { error: 'unknown op: ' + req.op };
      }
      return JSON.stringify(out);
    },
  };
  return true;
})()`
